// Package search implements the client for the remote search endpoint. The
// wire format follows the Custom Search JSON API.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned when credentials required by the endpoint are missing.
var ErrNotConfigured = errors.New("search is not configured: set search.api_key and search.engine_id")

// ErrEmptyQuery is returned for blank queries.
var ErrEmptyQuery = errors.New("query is empty")

// APIError is a non-2xx response from the endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("search request failed: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("search request failed (%d): %s", e.StatusCode, e.Message)
}

// Result is one search hit.
type Result struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// ResultSet is the response to one query.
type ResultSet struct {
	Query        string        `json:"query"`
	TotalResults int64         `json:"totalResults"`
	SearchTime   time.Duration `json:"searchTime"`
	Items        []Result      `json:"items"`
}

// Options configures a Client.
type Options struct {
	Endpoint  string
	APIKey    string
	EngineID  string
	Timeout   time.Duration
	CacheSize int // 0 disables caching
	Logger    zerolog.Logger
}

// Client queries the remote search endpoint. Successful result sets are
// cached by query. Failed requests are not retried.
type Client struct {
	endpoint  *url.URL
	apiKey    string
	engineID  string
	needCreds bool
	http      *http.Client
	cache     *lru.Cache[string, ResultSet]
	log       zerolog.Logger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("endpoint must be an absolute URL: %q", opts.Endpoint)
	}

	c := &Client{
		endpoint:  u,
		apiKey:    opts.APIKey,
		engineID:  opts.EngineID,
		needCreds: strings.HasSuffix(u.Hostname(), "googleapis.com"),
		http:      &http.Client{Timeout: opts.Timeout},
		log:       opts.Logger,
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, ResultSet](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create result cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

// Search runs a text query.
func (c *Client) Search(ctx context.Context, query string) (ResultSet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return ResultSet{}, ErrEmptyQuery
	}

	if c.needCreds && (c.apiKey == "" || c.engineID == "") {
		return ResultSet{}, ErrNotConfigured
	}

	if c.cache != nil {
		if rs, ok := c.cache.Get(query); ok {
			c.log.Debug().Str("query", query).Msg("search cache hit")
			rs.Items = slices.Clone(rs.Items)
			return rs, nil
		}
	}

	rs, err := c.do(ctx, query)
	if err != nil {
		return ResultSet{}, err
	}

	if c.cache != nil {
		cached := rs
		cached.Items = slices.Clone(rs.Items)
		c.cache.Add(query, cached)
	}

	return rs, nil
}

// wireResponse is the subset of the endpoint's response we read.
type wireResponse struct {
	SearchInformation struct {
		SearchTime   float64 `json:"searchTime"`
		TotalResults string  `json:"totalResults"`
	} `json:"searchInformation"`
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		DisplayLink string `json:"displayLink"`
		Snippet     string `json:"snippet"`
		Pagemap     struct {
			CSEImage []struct {
				Src string `json:"src"`
			} `json:"cse_image"`
		} `json:"pagemap"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, query string) (ResultSet, error) {
	u := *c.endpoint
	q := u.Query()
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	if c.engineID != "" {
		q.Set("cx", c.engineID)
	}
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return ResultSet{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return ResultSet{}, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return ResultSet{}, fmt.Errorf("read response: %w", err)
	}

	var wire wireResponse
	decodeErr := json.Unmarshal(body, &wire)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && wire.Error != nil {
			apiErr.Message = wire.Error.Message
		}
		c.log.Warn().Int("status", resp.StatusCode).Str("query", query).Msg("search request failed")
		return ResultSet{}, apiErr
	}

	if decodeErr != nil {
		return ResultSet{}, fmt.Errorf("parse response: %w", decodeErr)
	}

	rs := ResultSet{
		Query:      query,
		SearchTime: time.Duration(wire.SearchInformation.SearchTime * float64(time.Second)),
		Items:      make([]Result, 0, len(wire.Items)),
	}
	if n, err := strconv.ParseInt(wire.SearchInformation.TotalResults, 10, 64); err == nil {
		rs.TotalResults = n
	}

	for _, it := range wire.Items {
		r := Result{
			Title:       it.Title,
			Link:        it.Link,
			DisplayLink: it.DisplayLink,
			Snippet:     it.Snippet,
		}
		if len(it.Pagemap.CSEImage) > 0 {
			r.ImageURL = it.Pagemap.CSEImage[0].Src
		}
		rs.Items = append(rs.Items, r)
	}

	c.log.Debug().
		Str("query", query).
		Int("items", len(rs.Items)).
		Dur("elapsed", time.Since(start)).
		Msg("search complete")

	return rs, nil
}
