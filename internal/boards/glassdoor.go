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

type glassdoor struct {
	client *network.Client
}

func newGlassdoor(client *network.Client) *glassdoor {
	return &glassdoor{client: client}
}

func (g *glassdoor) board() string { return models.BoardGlassdoor }

func (g *glassdoor) transport() *network.Client { return g.client }

func (g *glassdoor) fetch(ctx context.Context, req scrape.Request) (scrape.ResultSet, error) {
	doc, err := fetchDocument(ctx, g.client, buildGlassdoorURL(req), headersFor(req))
	if err != nil {
		return nil, fmt.Errorf("glassdoor: %w", err)
	}

	rows := parseJSONLDRows(doc, models.BoardGlassdoor)
	rows = append(rows, parseGlassdoorCards(doc)...)
	return capRows(rows, req.ResultsWanted), nil
}

func buildGlassdoorURL(req scrape.Request) string {
	values := url.Values{}
	values.Set("sc.keyword", req.SearchTerm)
	if req.Location != "" {
		values.Set("locKeyword", req.Location)
	}
	if req.HoursOld != nil && *req.HoursOld > 0 {
		values.Set("fromAge", fmt.Sprintf("%d", daysFromHours(*req.HoursOld)))
	}
	return fmt.Sprintf("https://www.glassdoor.com/Job/jobs.htm?%s", values.Encode())
}

func parseGlassdoorCards(doc *goquery.Document) scrape.ResultSet {
	var rows scrape.ResultSet

	doc.Find(".react-job-listing").Each(func(_ int, s *goquery.Selection) {
		title := cleanText(s.Find(".jobLink").First().Text())
		if title == "" {
			title = cleanText(s.Find("[data-test='job-title']").First().Text())
		}

		company := cleanText(s.Find(".jobEmployerName").First().Text())
		if company == "" {
			company = cleanText(s.Find("[data-test='employer-name']").First().Text())
		}

		location := cleanText(s.Find(".jobLocation").First().Text())
		if location == "" {
			location = cleanText(s.Find("[data-test='emp-location']").First().Text())
		}

		salary := cleanText(s.Find(".salarySnippet").First().Text())
		link := absoluteURL("https://www.glassdoor.com", s.Find("a.jobLink").First().AttrOr("href", ""))

		if title == "" || link == "" {
			return
		}

		row := scrape.Row{
			"site_name": models.BoardGlassdoor,
			"title":     title,
			"url":       link,
			"is_remote": isRemoteText(location),
		}
		setIf(row, "employer", company)
		setIf(row, "job_location", location)
		setIf(row, "salary_estimate", salary)
		rows = append(rows, row)
	})

	return rows
}
