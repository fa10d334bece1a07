package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// CSpanSource attempts an API call first; on any non-2xx it falls back
// to scraping the person's page HTML. Results are filtered to titles
// mentioning the target subject.
type CSpanSource struct {
	client     *http.Client
	subject    string
	apiURL     string
	personPage string
}

func NewCSpanSource(subject string) *CSpanSource {
	return &CSpanSource{
		client:     newHTTPClient(fetchTimeout),
		subject:    subject,
		apiURL:     "https://www.c-span.org/api/search/?query=" + url.QueryEscape(subject),
		personPage: "https://www.c-span.org/person/?" + url.Values{"q": {subject}}.Encode(),
	}
}

func (c *CSpanSource) Name() string { return "cspan" }

func (c *CSpanSource) Verify(ctx context.Context) (VerifyResult, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("build cspan verify request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	client := newHTTPClient(verifyTimeout)
	resp, err := client.Do(req)
	if err != nil {
		return VerifyResult{Available: false, Error: err.Error(), Method: "api"}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return VerifyResult{Available: true, Status: resp.Status, Method: "api"}, nil
	}
	// Fall back to checking the person page's reachability.
	req2, err := http.NewRequestWithContext(ctx, http.MethodGet, c.personPage, nil)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("build cspan fallback verify request: %w", err)
	}
	req2.Header.Set("User-Agent", desktopUserAgent)
	resp2, err := client.Do(req2)
	if err != nil {
		return VerifyResult{Available: false, Error: err.Error(), Method: "html"}, nil
	}
	defer resp2.Body.Close()
	return VerifyResult{Available: resp2.StatusCode == http.StatusOK, Status: resp2.Status, Method: "html"}, nil
}

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type cspanAPIResult struct {
	Results []struct {
		Title string `json:"title"`
		Date  string `json:"date"`
		URL   string `json:"url"`
	} `json:"results"`
}

func (c *CSpanSource) Fetch(ctx context.Context, opts FetchOptions) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build cspan fetch request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cspan api fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return c.fetchViaHTML(ctx)
	}

	var parsed cspanAPIResult
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return c.fetchViaHTML(ctx)
	}

	records := make([]Record, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if !strings.Contains(strings.ToLower(r.Title), strings.ToLower(c.subject)) {
			continue
		}
		records = append(records, Record{
			ID:            "cspan_" + slug(r.Title),
			Title:         r.Title,
			Date:          normalizeDate(r.Date),
			Source:        c.Name(),
			RallyLocation: detectLocation(r.Title),
			VideoURL:      r.URL,
		})
	}
	return records, nil
}

const cspanContainerSelector = "li, div"

func (c *CSpanSource) fetchViaHTML(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.personPage, nil)
	if err != nil {
		return nil, fmt.Errorf("build cspan html fallback request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cspan html fallback fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cspan html fallback: HTTP %d", resp.StatusCode)
	}

	items, err := scrapeListItems(resp.Body, cspanContainerSelector)
	if err != nil {
		return nil, fmt.Errorf("parse cspan person page: %w", err)
	}

	if len(items) == 0 {
		// Structured scrape found nothing; fall back once more to a
		// readable-text extraction so a markup change doesn't zero out
		// the source entirely.
		return c.fetchViaReadability(ctx)
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.Title), strings.ToLower(c.subject)) {
			continue
		}
		records = append(records, Record{
			ID:            "cspan_" + slug(item.Title),
			Title:         item.Title,
			Date:          normalizeDate(item.Date),
			Source:        c.Name(),
			RallyLocation: detectLocation(item.Title),
			VideoURL:      item.Link,
		})
	}
	return records, nil
}

func (c *CSpanSource) fetchViaReadability(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.personPage, nil)
	if err != nil {
		return nil, fmt.Errorf("build cspan readability request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cspan readability fetch: %w", err)
	}
	defer resp.Body.Close()

	parsed, err := url.Parse(c.personPage)
	if err != nil {
		return nil, fmt.Errorf("parse cspan page url: %w", err)
	}
	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return nil, fmt.Errorf("extract cspan article text: %w", err)
	}

	var records []Record
	for _, line := range strings.Split(article.TextContent, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(strings.ToLower(line), strings.ToLower(c.subject)) {
			continue
		}
		records = append(records, Record{
			ID:            "cspan_" + slug(line),
			Title:         line,
			Source:        c.Name(),
			RallyLocation: detectLocation(line),
		})
	}
	return records, nil
}
