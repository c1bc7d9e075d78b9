// Package boards implements the production scrape provider: one fetcher
// per job board, sharing a TLS-fingerprinted transport and a proxy
// rotator. Each fetcher emits raw rows with its board's own column
// names; mapping onto the canonical schema happens downstream.
package boards

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/jimezsa/jobsweep/internal/network"
	"github.com/jimezsa/jobsweep/internal/scrape"
)

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d", e.code)
}

func fetchDocument(ctx context.Context, client *network.Client, target string, headers map[string]string) (*goquery.Document, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	applyHeaders(req, headers)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &statusError{code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func applyHeaders(req *fhttp.Request, headers map[string]string) {
	if headers == nil {
		headers = map[string]string{}
	}
	if _, ok := headers["accept"]; !ok {
		headers["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	if _, ok := headers["accept-language"]; !ok {
		headers["accept-language"] = "en-US,en;q=0.9"
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// parseJSONLDRows pulls JobPosting entries out of every ld+json script
// on the page and renders them as raw rows. Duplicate URLs within one
// page are dropped.
func parseJSONLDRows(doc *goquery.Document, board string) scrape.ResultSet {
	var rows scrape.ResultSet
	seen := map[string]struct{}{}

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		data, err := decodeJSONLD(raw)
		if err != nil {
			return
		}

		for _, row := range rowsFromJSONLD(data, board) {
			key := row.String("job_url")
			if key == "" {
				key = strings.ToLower(row.String("title") + "|" + row.String("company"))
			}
			if key == "" || key == "|" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			rows = append(rows, row)
		}
	})

	return rows
}

func decodeJSONLD(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<!--")
	raw = strings.TrimSuffix(raw, "-->")
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, " ", "")

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func rowsFromJSONLD(data any, board string) scrape.ResultSet {
	var rows scrape.ResultSet

	switch value := data.(type) {
	case []any:
		for _, item := range value {
			rows = append(rows, rowsFromJSONLD(item, board)...)
		}
	case map[string]any:
		if typ := strings.ToLower(stringValue(value["@type"], value["type"])); typ != "" {
			switch typ {
			case "jobposting":
				rows = append(rows, rowFromJobPosting(value, board))
				return rows
			case "itemlist":
				rows = append(rows, rowsFromItemList(value, board)...)
			}
		}
		if graph, ok := value["@graph"]; ok {
			rows = append(rows, rowsFromJSONLD(graph, board)...)
		}
		if main, ok := value["mainEntity"]; ok {
			rows = append(rows, rowsFromJSONLD(main, board)...)
		}
	}

	return rows
}

func rowsFromItemList(value map[string]any, board string) scrape.ResultSet {
	items, ok := value["itemListElement"]
	if !ok {
		return nil
	}

	var rows scrape.ResultSet
	switch list := items.(type) {
	case []any:
		for _, item := range list {
			rows = append(rows, rowsFromJSONLD(item, board)...)
		}
	case map[string]any:
		rows = append(rows, rowsFromJSONLD(list, board)...)
	}
	return rows
}

func rowFromJobPosting(value map[string]any, board string) scrape.Row {
	row := scrape.Row{"site_name": board}

	setIf(row, "title", stringValue(value["title"], value["name"]))
	setIf(row, "company", stringValue(mapValue(value["hiringOrganization"], "name")))
	setIf(row, "company_url", stringValue(mapValue(value["hiringOrganization"], "sameAs")))
	setIf(row, "job_url", stringValue(value["url"], value["@id"]))
	setIf(row, "employment_type", stringValue(value["employmentType"]))
	setIf(row, "date_posted", stringValue(value["datePosted"]))
	setIf(row, "description", cleanText(stringValue(value["description"])))

	city, state, country := addressFromJSONLD(value["jobLocation"])
	setIf(row, "job_city", city)
	setIf(row, "job_state", state)
	setIf(row, "job_country", country)

	if salary, ok := value["baseSalary"].(map[string]any); ok {
		setIf(row, "salary_currency", stringValue(salary["currency"]))
		if amount, ok := salary["value"].(map[string]any); ok {
			setIf(row, "salary_min", stringValue(amount["minValue"], amount["value"]))
			setIf(row, "salary_max", stringValue(amount["maxValue"]))
			setIf(row, "salary_interval", stringValue(amount["unitText"]))
		}
	}

	if locType := strings.ToLower(stringValue(value["jobLocationType"])); locType == "telecommute" {
		row["is_remote"] = true
	}

	return row
}

func addressFromJSONLD(value any) (city, state, country string) {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			city, state, country = addressFromJSONLD(item)
			if city != "" || state != "" || country != "" {
				return city, state, country
			}
		}
	case map[string]any:
		address, ok := v["address"].(map[string]any)
		if !ok {
			address = v
		}
		return stringValue(address["addressLocality"]),
			stringValue(address["addressRegion"]),
			stringValue(address["addressCountry"])
	}
	return "", "", ""
}

func setIf(row scrape.Row, key, value string) {
	if strings.TrimSpace(value) != "" {
		row[key] = strings.TrimSpace(value)
	}
}

func stringValue(values ...any) string {
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
		case int:
			return fmt.Sprintf("%d", v)
		case int64:
			return fmt.Sprintf("%d", v)
		case json.Number:
			return v.String()
		case fmt.Stringer:
			if v.String() != "" {
				return strings.TrimSpace(v.String())
			}
		case map[string]any:
			if name := stringValue(v["name"]); name != "" {
				return name
			}
		}
	}
	return ""
}

func mapValue(value any, key string) any {
	if value == nil {
		return nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

func isRemoteText(values ...string) bool {
	joined := strings.ToLower(strings.Join(values, " "))
	return strings.Contains(joined, "remote") ||
		strings.Contains(joined, "work from home")
}

func capRows(rows scrape.ResultSet, limit int) scrape.ResultSet {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func daysFromHours(hours int) int {
	days := (hours + 23) / 24
	if days < 1 {
		days = 1
	}
	return days
}
