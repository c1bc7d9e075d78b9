// Package planner turns a desired filter set into one or more request
// configurations ("passes") that a given board will actually accept.
// Boards reject certain filter combinations, so incompatible filters are
// split across passes instead of being sent together.
package planner

import (
	"strings"

	"github.com/jimezsa/jobsweep/internal/models"
)

// Pass is one fully valid request configuration for a board. Nil fields
// are omitted from the outgoing request entirely.
type Pass struct {
	HoursOld  *int
	Remote    *bool
	JobType   string
	EasyApply bool
}

// Filters captures what the caller wants enforced at request time.
type Filters struct {
	HoursOld       *int
	WorkMode       string
	EmploymentType string
	EasyApply      bool
}

// Passes returns the ordered pass list for a board. It never fails: an
// unsupported board degrades to a single recency-only pass and relies on
// post-filtering for everything else.
func Passes(board string, f Filters) []Pass {
	board = strings.ToLower(strings.TrimSpace(board))
	remote := RemoteFlag(f.WorkMode)
	jobType := requestJobType(f.EmploymentType)

	switch board {
	case models.BoardIndeed:
		// Indeed rejects hours_old combined with is_remote/job_type or
		// easy_apply in one request.
		var passes []Pass
		if f.HoursOld != nil {
			passes = append(passes, Pass{HoursOld: f.HoursOld})
		}
		if remote != nil || jobType != "" {
			passes = append(passes, Pass{Remote: remote, JobType: jobType})
		}
		if len(passes) == 0 {
			passes = append(passes, Pass{})
		}
		return passes

	case models.BoardLinkedIn:
		// LinkedIn rejects hours_old combined with easy_apply. Remote and
		// job type are enforced post-hoc for this board.
		var passes []Pass
		if f.HoursOld != nil {
			passes = append(passes, Pass{HoursOld: f.HoursOld})
		}
		if f.EasyApply {
			passes = append(passes, Pass{EasyApply: true})
		}
		if len(passes) == 0 {
			passes = append(passes, Pass{})
		}
		return passes

	case models.BoardGlassdoor:
		// Glassdoor is searched by free-text term only; recency is the
		// single request-time filter it honors.
		return []Pass{{HoursOld: f.HoursOld}}

	case models.BoardGoogle, models.BoardZipRecruiter:
		return []Pass{{HoursOld: f.HoursOld, Remote: remote, JobType: jobType}}

	default:
		return []Pass{{HoursOld: f.HoursOld}}
	}
}

// RemoteFlag maps a work-mode string onto the tri-state remote request
// flag: true for remote-only, false for on-site-only, nil for any or
// hybrid (hybrid is purely a post-filter concern).
func RemoteFlag(workMode string) *bool {
	mode := strings.ToLower(strings.TrimSpace(workMode))
	switch {
	case strings.HasPrefix(mode, "remote"):
		v := true
		return &v
	case strings.HasPrefix(mode, "on-site"), strings.HasPrefix(mode, "onsite"):
		v := false
		return &v
	default:
		return nil
	}
}

var requestJobTypes = map[string]string{
	"fulltime":   "fulltime",
	"full-time":  "fulltime",
	"parttime":   "parttime",
	"part-time":  "parttime",
	"contract":   "contract",
	"internship": "internship",
}

// requestJobType maps an employment-type filter onto the job_type value
// boards accept at request time; types they do not accept (e.g. w2) come
// back empty and are enforced by the post-filter cascade instead.
func requestJobType(employmentType string) string {
	return requestJobTypes[strings.ToLower(strings.TrimSpace(employmentType))]
}
