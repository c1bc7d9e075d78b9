// Package export renders the final posting table as CSV, TSV, JSON,
// markdown, or a terminal table. Tabular formats use the canonical column
// order with any extra board columns appended.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/muesli/termenv"

	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/normalize"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

func WritePostings(w io.Writer, postings []models.Posting, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, postings)
	case FormatCSV:
		return writeDelimited(w, postings, ',')
	case FormatTSV:
		return writeDelimited(w, postings, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, postings)
	default:
		return writeTable(w, postings, opts)
	}
}

func writeJSON(w io.Writer, postings []models.Posting) error {
	if postings == nil {
		postings = []models.Posting{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(postings)
}

func writeDelimited(w io.Writer, postings []models.Posting, delim rune) error {
	extras := normalize.ExtraColumns(postings)
	header := append(append([]string{}, models.CanonicalColumns...), extras...)

	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, p := range postings {
		record := make([]string, 0, len(header))
		for _, col := range models.CanonicalColumns {
			record = append(record, columnValue(p, col))
		}
		for _, col := range extras {
			record = append(record, extraValue(p, col))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, postings []models.Posting, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, p := range postings {
		fmt.Fprintln(tw, strings.Join(tableRow(p, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, postings []models.Posting) error {
	if len(postings) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, p := range postings {
		urlLine := "  URL: -"
		if u := strings.TrimSpace(p.JobURL); u != "" {
			urlLine = fmt.Sprintf("  URL: [Open listing](<%s>)", u)
		}
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", strings.TrimSpace(p.Title), strings.TrimSpace(p.Company)),
			fmt.Sprintf("  Location: %s", columnValue(p, "location")),
			fmt.Sprintf("  Board: %s", p.Board),
			urlLine,
		}
		if p.RemoteKnown() && *p.Remote {
			lines = append(lines, "  Remote: yes")
		}
		if p.JobType != "" {
			lines = append(lines, fmt.Sprintf("  Type: %s", p.JobType))
		}
		if salary := salaryString(p); salary != "" {
			lines = append(lines, fmt.Sprintf("  Salary: %s", salary))
		}
		if posted, ok := p.Posted(); ok {
			lines = append(lines, fmt.Sprintf("  Posted: %s", posted.Format("2006-01-02")))
		}
		if p.MatchTerm != "" {
			lines = append(lines, fmt.Sprintf("  Matched: %s", p.MatchTerm))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func columnValue(p models.Posting, col string) string {
	switch col {
	case "site_name":
		return p.Board
	case "title":
		return p.Title
	case "company":
		return p.Company
	case "company_url":
		return p.CompanyURL
	case "job_url":
		return p.JobURL
	case "location":
		if p.Location != "" {
			return p.Location
		}
		parts := make([]string, 0, 3)
		for _, part := range []string{p.City, p.State, p.Country} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, ", ")
	case "city":
		return p.City
	case "state":
		return p.State
	case "country":
		return p.Country
	case "is_remote":
		if !p.RemoteKnown() {
			return ""
		}
		return strconv.FormatBool(*p.Remote)
	case "job_type":
		return p.JobType
	case "job_level":
		return p.JobLevel
	case "interval":
		return p.Interval
	case "min_amount":
		return floatString(p.MinAmount)
	case "max_amount":
		return floatString(p.MaxAmount)
	case "currency":
		return p.Currency
	case "salary_source":
		return p.SalarySource
	case "date_posted":
		if posted, ok := p.Posted(); ok {
			return posted.Format(time.RFC3339)
		}
		return ""
	case "emails":
		return strings.Join(p.Emails, "; ")
	case "search_title":
		return p.SearchTitle
	case "search_location":
		return p.SearchLocation
	case "normalized_location":
		return p.NormalizedLocation
	case "match_term":
		return p.MatchTerm
	case "description":
		return p.Description
	default:
		return ""
	}
}

func extraValue(p models.Posting, col string) string {
	v, ok := p.Extra[col]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func floatString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func salaryString(p models.Posting) string {
	lo := floatString(p.MinAmount)
	hi := floatString(p.MaxAmount)
	switch {
	case lo != "" && hi != "":
		return strings.TrimSpace(fmt.Sprintf("%s - %s %s", lo, hi, p.Currency))
	case lo != "":
		return strings.TrimSpace(lo + " " + p.Currency)
	case hi != "":
		return strings.TrimSpace(hi + " " + p.Currency)
	default:
		return ""
	}
}

func tableHeader() []string {
	return []string{
		"board",
		"title",
		"company",
		"location",
		"url",
	}
}

func tableRow(p models.Posting, output *termenv.Output, opts WriteOptions) []string {
	const linkColor = "#87CEEB"

	u := strings.TrimSpace(p.JobURL)
	displayURL := "-"
	if u != "" {
		displayURL = u
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			displayURL = shortURLLabel(u)
		}
		if opts.ColorEnabled {
			displayURL = output.String(displayURL).Foreground(output.Color(linkColor)).String()
		}
		if opts.Hyperlinks {
			displayURL = hyperlink(u, displayURL)
		}
	}
	return []string{
		p.Board,
		strings.TrimSpace(p.Title),
		strings.TrimSpace(p.Company),
		columnValue(p, "location"),
		displayURL,
	}
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
