// Package mock serves deterministic search results in the endpoint's wire
// format so the client can be exercised without credentials.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Path is the route the search endpoint is served on.
const Path = "/customsearch/v1"

// ResultsPerQuery is the number of items returned for every query.
const ResultsPerQuery = 5

// NewHandler returns the mock endpoint router.
func NewHandler(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get(Path, handleSearch)

	return r
}

// Serve runs the mock endpoint on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info().Str("addr", addr).Str("path", Path).Msg("mock search endpoint listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(http.StatusBadRequest, "Missing query parameter q"))
		return
	}

	writeJSON(w, http.StatusOK, Results(query))
}

// Results builds the deterministic response body for query.
func Results(query string) map[string]any {
	slug := slugify(query)

	items := make([]map[string]any, 0, ResultsPerQuery)
	for i := 1; i <= ResultsPerQuery; i++ {
		item := map[string]any{
			"title":       fmt.Sprintf("%s | result %d", query, i),
			"link":        fmt.Sprintf("https://example.com/%s/%d", slug, i),
			"displayLink": "example.com",
			"snippet":     fmt.Sprintf("Everything about %s, part %d of %d.", query, i, ResultsPerQuery),
		}
		// Every other result carries a thumbnail.
		if i%2 == 1 {
			item["pagemap"] = map[string]any{
				"cse_image": []map[string]string{
					{"src": fmt.Sprintf("https://picsum.photos/seed/%s-%d/300/200", slug, i)},
				},
			}
		}
		items = append(items, item)
	}

	return map[string]any{
		"searchInformation": map[string]any{
			"searchTime":   0.05,
			"totalResults": fmt.Sprint(ResultsPerQuery),
		},
		"items": items,
	}
}

func errorBody(code int, msg string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.Query().Get("q")).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("mock search request")
		})
	}
}
