package station

import (
	"reflect"
	"testing"
)

func TestNormalizeFavicon(t *testing.T) {
	tests := []struct {
		name    string
		favicon string
		want    string
	}{
		{"absolute http", "http://example.com/icon.png", "http://example.com/icon.png"},
		{"absolute https", "https://example.com/icon.png", "https://example.com/icon.png"},
		{"relative path", "/metropolis103.9.jpg", NoFavicon},
		{"empty", "", NoFavicon},
		{"garbage", "not a url", NoFavicon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Station{Favicon: tt.favicon, URL: "https://example.com/stream"}
			s.Normalize()
			if s.Favicon != tt.want {
				t.Errorf("Normalize() favicon = %q, want %q", s.Favicon, tt.want)
			}
			if s.Favicon == "" {
				t.Error("normalized favicon must never be empty")
			}
		})
	}
}

func TestNormalizeResolvedURLFallback(t *testing.T) {
	s := Station{URL: "https://example.com/stream"}
	s.Normalize()
	if s.URLResolved != s.URL {
		t.Errorf("URLResolved = %q, want fallback to %q", s.URLResolved, s.URL)
	}

	s = Station{URL: "https://example.com/stream", URLResolved: "https://cdn.example.com/stream"}
	s.Normalize()
	if s.URLResolved != "https://cdn.example.com/stream" {
		t.Errorf("URLResolved = %q, want resolved URL preserved", s.URLResolved)
	}
}

func TestPlaybackURL(t *testing.T) {
	s := Station{URL: "https://example.com/a", URLResolved: "https://example.com/b"}
	if got := s.PlaybackURL(); got != "https://example.com/b" {
		t.Errorf("PlaybackURL() = %q, want resolved URL", got)
	}

	s = Station{URL: "https://example.com/a"}
	if got := s.PlaybackURL(); got != "https://example.com/a" {
		t.Errorf("PlaybackURL() = %q, want primary URL", got)
	}
}

func TestTagList(t *testing.T) {
	tests := []struct {
		name string
		tags string
		want []string
	}{
		{"plain", "pop,news,talk", []string{"pop", "news", "talk"}},
		{"spaced", " lofi , chillout ", []string{"lofi", "chillout"}},
		{"empty entries", "pop,,rock,", []string{"pop", "rock"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Station{Tags: tt.tags}
			if got := s.TagList(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TagList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasFavicon(t *testing.T) {
	s := Station{Favicon: "https://example.com/icon.png"}
	if !s.HasFavicon() {
		t.Error("HasFavicon() = false for valid icon URL")
	}

	s = Station{Favicon: NoFavicon}
	if s.HasFavicon() {
		t.Error("HasFavicon() = true for NoFavicon marker")
	}
}

func TestSeedNormalized(t *testing.T) {
	seeds := Seed()
	if len(seeds) == 0 {
		t.Fatal("Seed() returned no stations")
	}

	for _, s := range seeds {
		if s.UUID == "" {
			t.Errorf("seed station %q has no UUID", s.Name)
		}
		if s.Favicon == "" {
			t.Errorf("seed station %q has empty favicon after normalization", s.Name)
		}
		if s.URLResolved == "" {
			t.Errorf("seed station %q has empty resolved URL", s.Name)
		}
	}
}
