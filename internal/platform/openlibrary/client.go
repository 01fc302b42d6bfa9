package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://openlibrary.org"
	unknownAuthor  = "Unknown Author"
)

var (
	// ErrNotFound is returned when Open Library has no record for the ISBN.
	ErrNotFound = errors.New("openlibrary: book not found")
	// ErrUnavailable is returned when Open Library cannot be reached or keeps failing.
	ErrUnavailable = errors.New("openlibrary: service unavailable")
)

type Config struct {
	BaseURL     string
	UserAgent   string
	RPS         int
	MaxRetries  int
	Timeout     time.Duration
	BackoffBase time.Duration
}

type Client struct {
	httpClient  *http.Client
	userAgent   string
	baseURL     string
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent:   cfg.UserAgent,
		baseURL:     cfg.BaseURL,
		limiter:     rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.RPS)), 1),
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
	}
}

// BookData is the subset of book metadata the application stores.
type BookData struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	CoverURL    string `json:"cover_url,omitempty"`
	Description string `json:"description,omitempty"`
}

// bookDetails matches api/books?jscmd=data
type bookDetails struct {
	Title   string `json:"title"`
	Authors []struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	} `json:"authors"`
	Cover struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
	Notes    json.RawMessage `json:"notes"` // string or {type, value}
	Excerpts []struct {
		Text string `json:"text"`
	} `json:"excerpts"`
}

// LookupISBN fetches metadata for an already normalized ISBN.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (BookData, error) {
	bibkey := "ISBN:" + isbn
	u := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data", c.baseURL, url.QueryEscape(bibkey))

	var res map[string]bookDetails
	if err := c.get(ctx, u, &res); err != nil {
		return BookData{}, err
	}

	details, ok := res[bibkey]
	if !ok {
		return BookData{}, ErrNotFound
	}
	return details.toBookData(), nil
}

func (d bookDetails) toBookData() BookData {
	out := BookData{
		Title:    d.Title,
		Author:   unknownAuthor,
		CoverURL: firstNonEmpty(d.Cover.Large, d.Cover.Medium, d.Cover.Small),
	}
	if len(d.Authors) > 0 && d.Authors[0].Name != "" {
		out.Author = d.Authors[0].Name
	}

	out.Description = formatNotes(d.Notes)
	if out.Description == "" && len(d.Excerpts) > 0 {
		out.Description = d.Excerpts[0].Text
	}
	return out
}

func formatNotes(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: base, 2*base, 4*base...
			backoff := c.backoffBase * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.do(ctx, url, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: after %d retries: %v", ErrUnavailable, c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, url string, target interface{}) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		statusErr := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return true, statusErr
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return false, nil
}
