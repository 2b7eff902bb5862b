package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/lens/internal/search/mock"
)

func newMockClient(t *testing.T, cacheSize int) (*Client, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	handler := mock.NewHandler(zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{
		Endpoint:  srv.URL + mock.Path,
		Timeout:   5 * time.Second,
		CacheSize: cacheSize,
	})
	require.NoError(t, err)
	return c, &hits
}

func TestClient_Search(t *testing.T) {
	c, _ := newMockClient(t, 0)

	rs, err := c.Search(context.Background(), "  snow leopard ")
	require.NoError(t, err)

	assert.Equal(t, "snow leopard", rs.Query)
	assert.Equal(t, int64(mock.ResultsPerQuery), rs.TotalResults)
	require.Len(t, rs.Items, mock.ResultsPerQuery)
	assert.Equal(t, "snow leopard | result 1", rs.Items[0].Title)
	assert.NotEmpty(t, rs.Items[0].ImageURL)
	assert.Empty(t, rs.Items[1].ImageURL)
	assert.InDelta(t, float64(50*time.Millisecond), float64(rs.SearchTime), float64(time.Microsecond))
}

func TestClient_SearchEmptyQuery(t *testing.T) {
	c, hits := newMockClient(t, 0)

	_, err := c.Search(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, hits.Load())
}

func TestClient_SearchCachesResults(t *testing.T) {
	c, hits := newMockClient(t, 8)
	ctx := context.Background()

	_, err := c.Search(ctx, "cats")
	require.NoError(t, err)
	_, err = c.Search(ctx, "cats")
	require.NoError(t, err)
	_, err = c.Search(ctx, "dogs")
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_CachedResultsAreCopies(t *testing.T) {
	c, hits := newMockClient(t, 8)
	ctx := context.Background()

	first, err := c.Search(ctx, "cats")
	require.NoError(t, err)
	first.Items[0].Title = "changed"

	second, err := c.Search(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "cats | result 1", second.Items[0].Title)
	second.Items[0].Title = "changed again"

	third, err := c.Search(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "cats | result 1", third.Items[0].Title)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_SearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL, CacheSize: 4})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "cats")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "API key not valid", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "403")
}

func TestClient_SearchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "cats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func TestClient_SendsCredentials(t *testing.T) {
	var gotKey, gotCX string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotCX = r.URL.Query().Get("cx")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL, APIKey: "k1", EngineID: "e1"})
	require.NoError(t, err)

	rs, err := c.Search(context.Background(), "cats")
	require.NoError(t, err)
	assert.Empty(t, rs.Items)
	assert.Equal(t, "k1", gotKey)
	assert.Equal(t, "e1", gotCX)
}

func TestClient_GoogleEndpointRequiresCredentials(t *testing.T) {
	c, err := New(Options{Endpoint: "https://www.googleapis.com/customsearch/v1"})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "cats")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestNew_InvalidEndpoint(t *testing.T) {
	_, err := New(Options{Endpoint: "/relative"})
	require.Error(t, err)
}

func TestFilenameLabeler(t *testing.T) {
	l := FilenameLabeler{Defaults: []string{"nature", "landscape"}}
	ctx := context.Background()

	tests := []struct {
		ref  string
		want []string
	}{
		{ref: "/photos/red-running_shoe.JPG", want: []string{"red", "running", "shoe"}},
		{ref: "IMG_20240101_1200.jpg", want: []string{"nature", "landscape"}},
		{ref: "captures/capture-x7k2p9.jpg", want: []string{"nature", "landscape"}},
		{ref: "Golden Gate Bridge Golden.png", want: []string{"golden", "gate", "bridge"}},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := l.Labels(ctx, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_SearchImage(t *testing.T) {
	c, _ := newMockClient(t, 0)

	rs, err := c.SearchImage(context.Background(), "/photos/snow-leopard.jpg", FilenameLabeler{})
	require.NoError(t, err)

	assert.Equal(t, []string{"snow", "leopard"}, rs.Labels)
	assert.Equal(t, "snow leopard", rs.Query)
	assert.Equal(t, "/photos/snow-leopard.jpg", rs.ImageRef)
	assert.Len(t, rs.VisualMatches, 3)
	for _, m := range rs.VisualMatches {
		assert.NotEmpty(t, m.ImageURL)
	}
}

func TestClient_SearchImageNoLabels(t *testing.T) {
	c, hits := newMockClient(t, 0)

	_, err := c.SearchImage(context.Background(), "IMG_0001.jpg", FilenameLabeler{})
	require.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, hits.Load())
}
