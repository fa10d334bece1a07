package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// WhiteHouseSource scrapes a speeches index page, limiting results to
// the 10 most recent entries.
type WhiteHouseSource struct {
	client  *http.Client
	baseURL string
}

func NewWhiteHouseSource() *WhiteHouseSource {
	return &WhiteHouseSource{
		client:  newHTTPClient(fetchTimeout),
		baseURL: "https://www.whitehouse.gov/briefing-room/speeches-remarks/",
	}
}

func (w *WhiteHouseSource) Name() string { return "whitehouse" }

func (w *WhiteHouseSource) Verify(ctx context.Context) (VerifyResult, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL, nil)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("build whitehouse verify request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := newHTTPClient(verifyTimeout)
	resp, err := client.Do(req)
	if err != nil {
		return VerifyResult{Available: false, Error: err.Error(), Method: "http"}, nil
	}
	defer resp.Body.Close()
	return VerifyResult{Available: resp.StatusCode == http.StatusOK, Status: resp.Status, Method: "http"}, nil
}

const whitehouseContainerSelector = "li, article"

func (w *WhiteHouseSource) Fetch(ctx context.Context, opts FetchOptions) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build whitehouse fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whitehouse fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whitehouse fetch: HTTP %d", resp.StatusCode)
	}

	items, err := scrapeListItems(resp.Body, whitehouseContainerSelector)
	if err != nil {
		return nil, fmt.Errorf("parse whitehouse index: %w", err)
	}

	const recentLimit = 10
	if len(items) > recentLimit {
		items = items[:recentLimit]
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		link := item.Link
		if link != "" && !strings.HasPrefix(link, "http") {
			link = strings.TrimRight("https://www.whitehouse.gov", "/") + "/" + strings.TrimLeft(link, "/")
		}
		records = append(records, Record{
			ID:            "whitehouse_" + slug(item.Title),
			Title:         item.Title,
			Date:          normalizeDate(item.Date),
			Source:        w.Name(),
			RallyLocation: detectLocation(item.Title),
			VideoURL:      link,
		})
	}
	return records, nil
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var sb strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(sb.String(), "-")
}
