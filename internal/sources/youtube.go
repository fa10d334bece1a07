package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// YouTubeSource issues multiple keyword searches against the YouTube
// Data API, deduplicates by video id, and enriches with a details call
// for duration.
type YouTubeSource struct {
	client  *http.Client
	apiKey  string
	queries []string
}

func NewYouTubeSource(apiKey string, queries []string) *YouTubeSource {
	if len(queries) == 0 {
		queries = []string{"campaign rally speech", "official remarks"}
	}
	return &YouTubeSource{client: newHTTPClient(fetchTimeout), apiKey: apiKey, queries: queries}
}

func (y *YouTubeSource) Name() string { return "youtube" }

func (y *YouTubeSource) Verify(ctx context.Context) (VerifyResult, error) {
	if y.apiKey == "" {
		return VerifyResult{Available: false, Error: "no API key configured", Method: "config"}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	u := "https://www.googleapis.com/youtube/v3/search?part=id&maxResults=1&q=test&key=" + url.QueryEscape(y.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("build youtube verify request: %w", err)
	}

	client := newHTTPClient(verifyTimeout)
	resp, err := client.Do(req)
	if err != nil {
		return VerifyResult{Available: false, Error: err.Error(), Method: "api"}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return VerifyResult{Available: false, Status: resp.Status, Method: "api", RetryAfter: retryAfter(resp)}, nil
	}
	return VerifyResult{Available: resp.StatusCode == http.StatusOK, Status: resp.Status, Method: "api"}, nil
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
			Thumbnails  struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

func (y *YouTubeSource) Fetch(ctx context.Context, opts FetchOptions) ([]Record, error) {
	if y.apiKey == "" {
		return nil, fmt.Errorf("youtube source requires an API key")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 25
	}

	seen := map[string]*Record{}
	var order []string

	for _, q := range y.queries {
		items, err := y.search(ctx, q, limit)
		if err != nil {
			return nil, fmt.Errorf("youtube search %q: %w", q, err)
		}
		for _, it := range items {
			if it.ID.VideoID == "" {
				continue
			}
			if _, exists := seen[it.ID.VideoID]; exists {
				continue
			}
			rec := &Record{
				ID:            "youtube_" + it.ID.VideoID,
				Title:         it.Snippet.Title,
				Date:          normalizeDate(it.Snippet.PublishedAt),
				Source:        y.Name(),
				RallyLocation: detectLocation(it.Snippet.Title),
				VideoURL:      "https://www.youtube.com/watch?v=" + it.ID.VideoID,
				ThumbnailURL:  it.Snippet.Thumbnails.Default.URL,
			}
			seen[it.ID.VideoID] = rec
			order = append(order, it.ID.VideoID)
		}
	}

	if len(order) > 0 {
		if err := y.enrichDurations(ctx, seen, order); err != nil {
			return nil, fmt.Errorf("youtube enrich durations: %w", err)
		}
	}

	records := make([]Record, 0, len(order))
	for _, id := range order {
		records = append(records, *seen[id])
	}
	return records, nil
}

func (y *YouTubeSource) search(ctx context.Context, query string, limit int) ([]struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		PublishedAt string `json:"publishedAt"`
		Thumbnails  struct {
			Default struct {
				URL string `json:"url"`
			} `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}, error) {
	u := fmt.Sprintf(
		"https://www.googleapis.com/youtube/v3/search?part=snippet&type=video&maxResults=%d&q=%s&key=%s",
		limit, url.QueryEscape(query), url.QueryEscape(y.apiKey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var parsed ytSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Items, nil
}

func (y *YouTubeSource) enrichDurations(ctx context.Context, seen map[string]*Record, ids []string) error {
	u := fmt.Sprintf(
		"https://www.googleapis.com/youtube/v3/videos?part=contentDetails&id=%s&key=%s",
		url.QueryEscape(strings.Join(ids, ",")), url.QueryEscape(y.apiKey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var parsed ytVideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return err
	}

	for _, item := range parsed.Items {
		if rec, ok := seen[item.ID]; ok {
			rec.Duration = parseISODuration(item.ContentDetails.Duration)
		}
	}
	return nil
}
