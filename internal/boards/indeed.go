package boards

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/network"
	"github.com/jimezsa/jobsweep/internal/scrape"
)

type indeed struct {
	client *network.Client
}

func newIndeed(client *network.Client) *indeed {
	return &indeed{client: client}
}

func (i *indeed) board() string { return models.BoardIndeed }

func (i *indeed) transport() *network.Client { return i.client }

func (i *indeed) fetch(ctx context.Context, req scrape.Request) (scrape.ResultSet, error) {
	doc, err := fetchDocument(ctx, i.client, buildIndeedURL(req), headersFor(req))
	if err != nil {
		var se *statusError
		// A 400 here means the location string could not be resolved.
		if errors.As(err, &se) && se.code == 400 {
			return nil, fmt.Errorf("indeed: %w", scrape.ErrBadLocation)
		}
		return nil, fmt.Errorf("indeed: %w", err)
	}

	var rows scrape.ResultSet
	doc.Find("a.tapItem").Each(func(_ int, s *goquery.Selection) {
		if len(rows) >= req.ResultsWanted {
			return
		}

		title := cleanText(s.Find("h2.jobTitle span").First().Text())
		company := cleanText(s.Find("span.companyName").First().Text())
		location := cleanText(s.Find("div.companyLocation").First().Text())
		snippet := cleanText(s.Find("div.job-snippet").Text())
		posted := s.Find("time.jobDate").First().AttrOr("datetime", "")

		link, _ := s.Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = indeedBaseURL(req.Country) + link
		}

		if title == "" || link == "" {
			return
		}

		row := scrape.Row{
			"site_name": models.BoardIndeed,
			"title":     title,
			"job_url":   link,
			"is_remote": isRemoteText(location, snippet),
		}
		setIf(row, "company", company)
		setIf(row, "location", location)
		setIf(row, "description", snippet)
		setIf(row, "date_posted", posted)
		rows = append(rows, row)
	})

	return rows, nil
}

func buildIndeedURL(req scrape.Request) string {
	values := url.Values{}
	values.Set("q", req.SearchTerm)
	if req.Location != "" {
		values.Set("l", req.Location)
	}
	if req.Offset != nil && *req.Offset > 0 {
		values.Set("start", fmt.Sprintf("%d", *req.Offset))
	}
	if req.JobType != "" {
		values.Set("jt", req.JobType)
	}
	if req.Remote != nil && *req.Remote {
		values.Set("sc", "0kf:attr(DSQF7);")
	}
	if req.HoursOld != nil && *req.HoursOld > 0 {
		values.Set("fromage", fmt.Sprintf("%d", daysFromHours(*req.HoursOld)))
	}
	if req.Distance != nil && *req.Distance > 0 {
		values.Set("radius", fmt.Sprintf("%d", *req.Distance))
	}
	return fmt.Sprintf("%s/jobs?%s", indeedBaseURL(req.Country), values.Encode())
}

func indeedBaseURL(country string) string {
	country = strings.TrimSpace(strings.ToLower(country))
	if country == "" || country == "usa" || country == "us" {
		return "https://www.indeed.com"
	}
	return fmt.Sprintf("https://%s.indeed.com", country)
}
