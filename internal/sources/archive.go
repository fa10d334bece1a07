package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ArchiveSource queries the Internet Archive's advanced-search endpoint
// for speech/rally recordings.
type ArchiveSource struct {
	client *http.Client
}

func NewArchiveSource() *ArchiveSource {
	return &ArchiveSource{client: newHTTPClient(fetchTimeout)}
}

func (a *ArchiveSource) Name() string { return "archive" }

func (a *ArchiveSource) Verify(ctx context.Context) (VerifyResult, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveSearchURL(1), nil)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("build archive verify request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := newHTTPClient(verifyTimeout)
	resp, err := client.Do(req)
	if err != nil {
		return VerifyResult{Available: false, Error: err.Error(), Method: "http"}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return VerifyResult{Available: false, Status: resp.Status, Method: "http", RetryAfter: retryAfter(resp)}, nil
	}
	return VerifyResult{Available: resp.StatusCode == http.StatusOK, Status: resp.Status, Method: "http"}, nil
}

type archiveSearchResponse struct {
	Response struct {
		Docs []archiveDoc `json:"docs"`
	} `json:"response"`
}

type archiveDoc struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Date       string `json:"date"`
}

func archiveSearchURL(rows int) string {
	return fmt.Sprintf(
		"https://archive.org/advancedsearch.php?q=title%%3A%%28speech+OR+rally%%29+AND+mediatype%%3Amovies&fl%%5B%%5D=identifier&fl%%5B%%5D=title&fl%%5B%%5D=date&rows=%d&output=json",
		rows,
	)
}

func (a *ArchiveSource) Fetch(ctx context.Context, opts FetchOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 25
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveSearchURL(limit), nil)
	if err != nil {
		return nil, fmt.Errorf("build archive fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive fetch: HTTP %d", resp.StatusCode)
	}

	var parsed archiveSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode archive response: %w", err)
	}

	records := make([]Record, 0, len(parsed.Response.Docs))
	for _, doc := range parsed.Response.Docs {
		if doc.Identifier == "" {
			continue
		}
		records = append(records, Record{
			ID:            "archive_" + doc.Identifier,
			Title:         doc.Title,
			Date:          normalizeDate(doc.Date),
			Source:        a.Name(),
			RallyLocation: detectLocation(doc.Title),
			VideoURL:      "https://archive.org/details/" + doc.Identifier,
		})
	}
	return records, nil
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := time.ParseDuration(v + "s"); err == nil {
		return secs
	}
	return 0
}
