package boards

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/network"
	"github.com/jimezsa/jobsweep/internal/scrape"
)

const linkedinPageSize = 25

type linkedin struct {
	client *network.Client
}

func newLinkedIn(client *network.Client) *linkedin {
	return &linkedin{client: client}
}

func (l *linkedin) board() string { return models.BoardLinkedIn }

func (l *linkedin) transport() *network.Client { return l.client }

func (l *linkedin) fetch(ctx context.Context, req scrape.Request) (scrape.ResultSet, error) {
	var rows scrape.ResultSet
	start := 0
	if req.Offset != nil && *req.Offset > 0 {
		start = *req.Offset
	}

	for len(rows) < req.ResultsWanted {
		doc, err := fetchDocument(ctx, l.client, buildLinkedInURL(req, start), headersFor(req))
		if err != nil {
			if len(rows) > 0 {
				// Later pages failing is not worth losing the earlier ones.
				break
			}
			return nil, fmt.Errorf("linkedin: %w", err)
		}

		page := parseLinkedInCards(doc)
		if len(page) == 0 {
			break
		}
		rows = append(rows, page...)
		start += linkedinPageSize
	}
	rows = capRows(rows, req.ResultsWanted)

	if req.FetchDescriptions {
		for _, row := range rows {
			l.attachDescription(ctx, req, row)
		}
	}
	return rows, nil
}

func buildLinkedInURL(req scrape.Request, start int) string {
	values := url.Values{}
	values.Set("keywords", req.SearchTerm)
	if req.Location != "" {
		values.Set("location", req.Location)
	}
	if req.HoursOld != nil && *req.HoursOld > 0 {
		values.Set("f_TPR", fmt.Sprintf("r%d", *req.HoursOld*3600))
	}
	if req.Remote != nil && *req.Remote {
		values.Set("f_WT", "2")
	}
	if req.EasyApply != nil && *req.EasyApply {
		values.Set("f_AL", "true")
	}
	if req.Distance != nil && *req.Distance > 0 {
		values.Set("distance", fmt.Sprintf("%d", *req.Distance))
	}
	if start > 0 {
		values.Set("start", fmt.Sprintf("%d", start))
	}
	return fmt.Sprintf("https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search?%s", values.Encode())
}

func parseLinkedInCards(doc *goquery.Document) scrape.ResultSet {
	var rows scrape.ResultSet

	doc.Find("div.base-search-card").Each(func(_ int, s *goquery.Selection) {
		title := cleanText(s.Find("h3.base-search-card__title").First().Text())
		company := cleanText(s.Find("h4.base-search-card__subtitle a").First().Text())
		companyURL := s.Find("h4.base-search-card__subtitle a").First().AttrOr("href", "")
		location := cleanText(s.Find("span.job-search-card__location").First().Text())
		posted := s.Find("time").First().AttrOr("datetime", "")
		link := s.Find("a.base-card__full-link").First().AttrOr("href", "")
		if link == "" {
			link = s.Find("a").First().AttrOr("href", "")
		}

		if title == "" || link == "" {
			return
		}

		row := scrape.Row{
			"site_name": models.BoardLinkedIn,
			"job_title": title,
			"link":      trackingStripped(link),
		}
		setIf(row, "company_name", company)
		setIf(row, "company_link", trackingStripped(companyURL))
		setIf(row, "full_location", location)
		setIf(row, "date", posted)
		rows = append(rows, row)
	})

	return rows
}

// attachDescription fetches the posting page and drops the description
// and seniority into the row. Failures leave the row untouched.
func (l *linkedin) attachDescription(ctx context.Context, req scrape.Request, row scrape.Row) {
	link := row.String("link")
	if link == "" {
		return
	}
	doc, err := fetchDocument(ctx, l.client, link, headersFor(req))
	if err != nil {
		return
	}

	desc := cleanText(doc.Find("div.show-more-less-html__markup").First().Text())
	setIf(row, "job_description", desc)

	doc.Find("li.description__job-criteria-item").Each(func(_ int, s *goquery.Selection) {
		header := cleanText(s.Find("h3").First().Text())
		value := cleanText(s.Find("span").First().Text())
		if value == "" {
			return
		}
		switch header {
		case "Seniority level":
			setIf(row, "seniority", value)
		case "Employment type":
			setIf(row, "employment_type", value)
		}
	})
}

// trackingStripped removes the query string LinkedIn appends for click
// tracking.
func trackingStripped(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
