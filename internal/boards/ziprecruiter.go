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

type zipRecruiter struct {
	client *network.Client
}

func newZipRecruiter(client *network.Client) *zipRecruiter {
	return &zipRecruiter{client: client}
}

func (z *zipRecruiter) board() string { return models.BoardZipRecruiter }

func (z *zipRecruiter) transport() *network.Client { return z.client }

func (z *zipRecruiter) fetch(ctx context.Context, req scrape.Request) (scrape.ResultSet, error) {
	doc, err := fetchDocument(ctx, z.client, buildZipRecruiterURL(req), headersFor(req))
	if err != nil {
		return nil, fmt.Errorf("ziprecruiter: %w", err)
	}

	rows := parseJSONLDRows(doc, models.BoardZipRecruiter)
	rows = append(rows, parseZipRecruiterCards(doc)...)
	return capRows(rows, req.ResultsWanted), nil
}

func buildZipRecruiterURL(req scrape.Request) string {
	values := url.Values{}
	values.Set("search", req.SearchTerm)
	if req.Location != "" {
		values.Set("location", req.Location)
	}
	if req.HoursOld != nil && *req.HoursOld > 0 {
		values.Set("days", fmt.Sprintf("%d", daysFromHours(*req.HoursOld)))
	}
	if req.Remote != nil && *req.Remote {
		values.Set("refine_by_location_type", "only_remote")
	}
	if req.Distance != nil && *req.Distance > 0 {
		values.Set("radius", fmt.Sprintf("%d", *req.Distance))
	}
	if req.JobType != "" {
		values.Set("refine_by_employment", "employment_type:"+req.JobType)
	}
	return fmt.Sprintf("https://www.ziprecruiter.com/jobs-search?%s", values.Encode())
}

func parseZipRecruiterCards(doc *goquery.Document) scrape.ResultSet {
	var rows scrape.ResultSet

	doc.Find("article.job_result").Each(func(_ int, s *goquery.Selection) {
		title := cleanText(s.Find("h2.title").First().Text())
		if title == "" {
			title = cleanText(s.Find("[data-test='job-title']").First().Text())
		}
		company := cleanText(s.Find("a.company_name").First().Text())
		location := cleanText(s.Find("p.location").First().Text())
		posted := s.Find("time").First().AttrOr("datetime", "")
		link := absoluteURL("https://www.ziprecruiter.com", s.Find("a.job_link").First().AttrOr("href", ""))
		if link == "" {
			link = absoluteURL("https://www.ziprecruiter.com", s.Find("a").First().AttrOr("href", ""))
		}

		if title == "" || link == "" {
			return
		}

		row := scrape.Row{
			"site_name": models.BoardZipRecruiter,
			"position":  title,
			"url":       link,
			"is_remote": isRemoteText(location),
		}
		setIf(row, "company_name", company)
		setIf(row, "location", location)
		setIf(row, "published_on", posted)
		rows = append(rows, row)
	})

	return rows
}
