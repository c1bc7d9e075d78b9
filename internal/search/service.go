// Package search drives the whole pipeline: it plans per-board request
// passes, issues them through the retrying scrape client, then merges,
// normalizes, dedupes, and post-filters the results into one table.
package search

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobsweep/internal/debugsink"
	"github.com/jimezsa/jobsweep/internal/dedupe"
	"github.com/jimezsa/jobsweep/internal/filter"
	"github.com/jimezsa/jobsweep/internal/location"
	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/normalize"
	"github.com/jimezsa/jobsweep/internal/planner"
	"github.com/jimezsa/jobsweep/internal/scrape"
)

// Per-board result caps: these boards return junk past their own page
// limits, so asking for more only slows the run down.
const (
	zipRecruiterCap = 25
	googleCap       = 50
)

const defaultJitter = 0.6

// Service owns one search run end to end.
type Service struct {
	client *scrape.Client
	sink   *debugsink.Sink
	logger zerolog.Logger

	// sleep and now are swappable in tests.
	sleep func(time.Duration)
	now   func() time.Time
	rand  *rand.Rand
}

func New(client *scrape.Client, sink *debugsink.Sink, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		sink:   sink,
		logger: logger,
		sleep:  time.Sleep,
		now:    time.Now,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run executes the full pipeline for one query. An empty query (no
// titles, locations, or boards) short-circuits to an empty table without
// issuing any request; any other failure is partial, and the result is
// the union of whatever succeeded.
func (s *Service) Run(ctx context.Context, q models.Query) ([]models.Posting, error) {
	q.Normalize()
	if q.Empty() {
		return nil, nil
	}

	country := location.NormalizeCountry(q.Country)
	locations := make([]string, 0, len(q.Locations))
	for _, loc := range q.Locations {
		if location.IsRemote(loc) {
			locations = append(locations, "Remote")
			continue
		}
		locations = append(locations, location.StripCountrySuffix(loc))
	}

	attempts := scrape.DefaultAttempts
	if !q.Sequential {
		attempts = scrape.NonSequentialAttempts
	}

	var batches []normalize.Batch
	for _, title := range q.Titles {
		for _, loc := range locations {
			for _, board := range q.Boards {
				if err := ctx.Err(); err != nil {
					return nil, err
				}

				collected := s.searchBoard(ctx, q, boardRun{
					board:    board,
					title:    title,
					loc:      loc,
					country:  country,
					attempts: attempts,
				})
				batches = append(batches, collected...)
			}
		}
	}

	rows := normalize.Merge(batches)
	if len(rows) == 0 {
		return nil, nil
	}

	postings := s.normalized(rows)
	s.sink.WriteJSON("counts_1_merged.json", debugsink.SiteCounts(postings))

	postings = dedupe.Postings(postings)
	s.sink.WriteJSON("counts_2_deduped.json", debugsink.SiteCounts(postings))

	postings = s.filtered(postings, "hours", func(in []models.Posting) []models.Posting {
		return filter.ByHours(in, q.HoursOld, true, s.now())
	})
	s.sink.WriteJSON("counts_3_hours.json", debugsink.SiteCounts(postings))

	postings = s.filtered(postings, "work_mode", func(in []models.Posting) []models.Posting {
		return filter.ByWorkMode(in, q.WorkMode)
	})
	postings = s.filtered(postings, "experience", func(in []models.Posting) []models.Posting {
		return filter.ByExperience(in, q.MinExperience, q.MaxExperience, true)
	})
	postings = s.filtered(postings, "employment_type", func(in []models.Posting) []models.Posting {
		return filter.ByEmploymentType(in, q.EmploymentType)
	})
	if q.StrictTitles {
		postings = s.filtered(postings, "title", func(in []models.Posting) []models.Posting {
			return filter.ByTitle(in, q.Titles)
		})
	}

	s.sink.WriteJSON("counts_4_final.json", debugsink.SiteCounts(postings))
	return postings, nil
}

type boardRun struct {
	board    string
	title    string
	loc      string
	country  string
	attempts int
}

// searchBoard issues every pass for one board/title/location combination
// and returns the raw batches that produced rows. Failures are logged and
// skipped; they never abort the other combinations.
func (s *Service) searchBoard(ctx context.Context, q models.Query, run boardRun) []normalize.Batch {
	// The glassdoor term-only strategy is sequential-mode special-casing;
	// non-sequential runs use the plain request path below.
	if run.board == models.BoardGlassdoor && q.Sequential {
		return s.searchGlassdoor(ctx, q, run)
	}

	passes := planner.Passes(run.board, planner.Filters{
		HoursOld:       q.HoursOld,
		WorkMode:       q.WorkMode,
		EmploymentType: q.EmploymentType,
		EasyApply:      q.EasyApply,
	})
	wanted := resultsCap(run.board, q.ResultsWanted)

	var batches []normalize.Batch
	for pidx, pass := range passes {
		req := scrape.Request{
			Boards:        []string{run.board},
			Location:      run.loc,
			ResultsWanted: wanted,
			HoursOld:      pass.HoursOld,
			Remote:        pass.Remote,
			JobType:       pass.JobType,
			Proxies:       q.Proxies,
			UserAgent:     q.UserAgent,
			CACert:        q.CACert,
		}
		if pass.EasyApply {
			v := true
			req.EasyApply = &v
		}
		if run.board == models.BoardGoogle {
			req.GoogleSearchTerm = run.title + " " + run.loc
		} else {
			req.SearchTerm = run.title
		}
		if run.board == models.BoardIndeed {
			req.Country = run.country
			distance := 50
			req.Distance = &distance
		}
		if run.board == models.BoardGlassdoor {
			req.Country = run.country
		}
		if run.board == models.BoardLinkedIn {
			req.FetchDescriptions = q.FetchDescriptions
		}

		s.sink.WriteJSON(queryArtifact(run.board, pidx+1, run.title, run.loc), req.Args())

		rows, err := s.client.Scrape(ctx, req, run.attempts)
		if err != nil {
			s.logger.Warn().
				Str("board", run.board).
				Str("title", run.title).
				Str("location", run.loc).
				Err(err).
				Msg("board pass failed, continuing")
			s.pace(q)
			continue
		}

		// Google sometimes returns nothing for a bare "<title> <loc>"
		// term; one rephrased attempt recovers most of those.
		if run.board == models.BoardGoogle && len(rows) == 0 {
			alt := req
			alt.GoogleSearchTerm = fmt.Sprintf("%s jobs in %s", run.title, run.loc)
			if altRows, altErr := s.client.Scrape(ctx, alt, 2); altErr == nil {
				rows = altRows
			}
		}

		if len(rows) > 0 {
			s.sink.WriteRows(rawArtifact(run.board, pidx+1, run.title, run.loc), rows)
			batches = append(batches, normalize.Batch{
				Rows:               rows,
				SearchTitle:        run.title,
				SearchLocation:     run.loc,
				NormalizedLocation: run.loc,
			})
		}

		s.pace(q)
	}
	return batches
}

// searchGlassdoor implements the term-only strategy: the locality is
// folded into the free-text term (never sent as a location parameter),
// quoted first and unquoted as a fallback, and the rows are tightened
// afterwards against the locality's city and state.
func (s *Service) searchGlassdoor(ctx context.Context, q models.Query, run boardRun) []normalize.Batch {
	targets := location.GlassdoorTargets(run.loc)
	if len(targets) == 0 {
		s.logger.Debug().Str("location", run.loc).Msg("no usable glassdoor target, skipping")
		return nil
	}

	passes := planner.Passes(models.BoardGlassdoor, planner.Filters{HoursOld: q.HoursOld})
	wanted := resultsCap(models.BoardGlassdoor, q.ResultsWanted)

	var batches []normalize.Batch
	for _, target := range targets {
		for pidx, pass := range passes {
			req := scrape.Request{
				Boards:        []string{models.BoardGlassdoor},
				SearchTerm:    fmt.Sprintf("%s %q", run.title, target),
				Country:       run.country,
				ResultsWanted: wanted,
				HoursOld:      pass.HoursOld,
				Proxies:       q.Proxies,
				UserAgent:     q.UserAgent,
				CACert:        q.CACert,
			}
			s.sink.WriteJSON(queryArtifact(models.BoardGlassdoor, pidx+1, run.title, target), req.Args())

			rows, err := s.client.Scrape(ctx, req, 3)
			if err == nil && len(rows) == 0 {
				unquoted := req
				unquoted.SearchTerm = run.title + " " + target
				rows, err = s.client.Scrape(ctx, unquoted, 3)
			}
			if err != nil {
				s.logger.Warn().
					Str("board", models.BoardGlassdoor).
					Str("title", run.title).
					Str("target", target).
					Err(err).
					Msg("board pass failed, continuing")
				s.pace(q)
				continue
			}

			rows = tightenByLocality(rows, target)
			if len(rows) > 0 {
				s.sink.WriteRows(rawArtifact(models.BoardGlassdoor, pidx+1, run.title, target), rows)
				batches = append(batches, normalize.Batch{
					Rows:               rows,
					SearchTitle:        run.title,
					SearchLocation:     run.loc,
					NormalizedLocation: target,
				})
			}

			s.pace(q)
		}
	}
	return batches
}

// tightenByLocality keeps rows whose location mentions the target's city
// or state. Rows without any location text survive.
func tightenByLocality(rows scrape.ResultSet, target string) scrape.ResultSet {
	city, state := location.SplitCityState(target)
	if city == "" && state == "" {
		return rows
	}

	out := rows[:0]
	for _, row := range rows {
		loc := row.String("location")
		if loc == "" {
			loc = row.String("job_location")
		}
		if loc == "" {
			out = append(out, row)
			continue
		}
		lower := strings.ToLower(loc)
		if state != "" && strings.Contains(lower, strings.ToLower(state)) {
			out = append(out, row)
			continue
		}
		if city != "" && strings.Contains(lower, strings.ToLower(city)) {
			out = append(out, row)
		}
	}
	return out
}

// normalized maps raw rows to canonical postings, degrading to
// board-tagged raw postings if the normalizer itself panics.
func (s *Service) normalized(rows []scrape.Row) (out []models.Posting) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn().Interface("panic", r).Msg("normalize failed, keeping raw rows")
			out = make([]models.Posting, 0, len(rows))
			for _, row := range rows {
				out = append(out, models.Posting{
					Board: row.String("site_name"),
					Title: row.String("title"),
					Extra: row,
				})
			}
		}
	}()
	return normalize.Postings(rows)
}

// filtered applies one cascade stage, passing the table through unchanged
// if the stage panics. Partial results beat a dead pipeline.
func (s *Service) filtered(in []models.Posting, stage string, apply func([]models.Posting) []models.Posting) (out []models.Posting) {
	out = in
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn().Str("stage", stage).Interface("panic", r).Msg("filter stage failed, passing through")
			out = in
		}
	}()
	return apply(in)
}

// pace sleeps between board requests. Non-sequential runs skip the pacing
// delay entirely.
func (s *Service) pace(q models.Query) {
	if !q.Sequential {
		return
	}
	baseDelay := q.PerSiteDelay
	if baseDelay < 0 {
		baseDelay = 0
	}
	jitter := s.rand.Float64() * defaultJitter
	s.sleep(time.Duration((baseDelay + jitter) * float64(time.Second)))
}

func resultsCap(board string, desired int) int {
	switch board {
	case models.BoardZipRecruiter:
		return min(desired, zipRecruiterCap)
	case models.BoardGoogle:
		return min(desired, googleCap)
	default:
		return desired
	}
}

func queryArtifact(board string, pass int, title, loc string) string {
	return fmt.Sprintf("query_%s_%d_%s_%s.json",
		debugsink.SafeName(board), pass, debugsink.SafeName(title), debugsink.SafeName(loc))
}

func rawArtifact(board string, pass int, title, loc string) string {
	return fmt.Sprintf("raw_%s_%d_%s_%s.csv",
		debugsink.SafeName(board), pass, debugsink.SafeName(title), debugsink.SafeName(loc))
}
