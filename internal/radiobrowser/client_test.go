package radiobrowser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sonicwave-radio/sonicwave/internal/station"
)

func setupTestServer(handler http.HandlerFunc) (*httptest.Server, *Client) {
	server := httptest.NewServer(handler)
	return server, NewClientWithBaseURL(server.URL)
}

func TestSearchQueryParams(t *testing.T) {
	var gotQuery map[string]string

	server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != searchPath {
			t.Errorf("Expected path %s, got %s", searchPath, r.URL.Path)
		}
		gotQuery = map[string]string{}
		for k, v := range r.URL.Query() {
			gotQuery[k] = v[0]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	})
	defer server.Close()

	_, err := client.Search(context.Background(), Filters{Tag: "lofi"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := map[string]string{
		"tag":        "lofi",
		"limit":      "50",
		"hidebroken": "true",
		"order":      "clickcount",
		"reverse":    "true",
		"is_https":   "true",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query[%q] = %q, want %q", k, gotQuery[k], v)
		}
	}
	for _, absent := range []string{"name", "country"} {
		if _, ok := gotQuery[absent]; ok {
			t.Errorf("query contains %q, want it omitted for empty filter", absent)
		}
	}
}

func TestSearchNormalizesRecords(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		stations := []station.Station{
			{
				UUID:    "abc",
				Name:    "Test FM",
				URL:     "https://example.com/stream",
				Favicon: "/relative.png",
			},
			{
				UUID:        "def",
				Name:        "Other FM",
				URL:         "https://example.com/other",
				URLResolved: "https://cdn.example.com/other",
				Favicon:     "https://example.com/icon.png",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stations)
	})
	defer server.Close()

	stations, err := client.Search(context.Background(), Filters{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("Search() returned %d stations, want 2", len(stations))
	}

	if stations[0].Favicon != station.NoFavicon {
		t.Errorf("stations[0].Favicon = %q, want %q", stations[0].Favicon, station.NoFavicon)
	}
	if stations[0].URLResolved != "https://example.com/stream" {
		t.Errorf("stations[0].URLResolved = %q, want primary URL fallback", stations[0].URLResolved)
	}
	if stations[1].Favicon != "https://example.com/icon.png" {
		t.Errorf("stations[1].Favicon = %q, want untouched absolute URL", stations[1].Favicon)
	}
	if stations[1].URLResolved != "https://cdn.example.com/other" {
		t.Errorf("stations[1].URLResolved = %q, want resolved URL preserved", stations[1].URLResolved)
	}
}

func TestSearchCustomLimit(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "28" {
			t.Errorf("limit = %q, want 28", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	})
	defer server.Close()

	if _, err := client.Search(context.Background(), Filters{Limit: 28}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
}

func TestSearchUpstreamError(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := client.Search(context.Background(), Filters{})
	if err == nil {
		t.Fatal("Search() should return error on 500 response")
	}
}

func TestSearchInvalidJSON(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("not valid json"))
	})
	defer server.Close()

	_, err := client.Search(context.Background(), Filters{})
	if err == nil {
		t.Fatal("Search() should return error for invalid JSON")
	}
}

func TestSearchTimeoutIsDistinguishable(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, Filters{})
	if err == nil {
		t.Fatal("Search() should return error on deadline")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Search() error = %v, want ErrTimeout", err)
	}
}

func TestTopStations(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "28" {
			t.Errorf("limit = %q, want 28", q.Get("limit"))
		}
		for _, absent := range []string{"name", "country", "tag"} {
			if q.Has(absent) {
				t.Errorf("query contains %q, want it omitted", absent)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	})
	defer server.Close()

	if _, err := client.TopStations(context.Background(), 28); err != nil {
		t.Fatalf("TopStations() error = %v", err)
	}
}
