// Package station defines the radio station record and its normalization rules.
package station

import "strings"

// NoFavicon marks a station whose icon URL was missing or malformed, so
// consumers can render a deterministic placeholder. It is never the empty
// string.
const NoFavicon = "none"

// Station is a single internet radio stream entry as returned by the
// radio-browser directory. Records are read-only after normalization; the
// UUID is the sole equality key across favorites, the currently-playing
// comparison and list de-duplication.
type Station struct {
	UUID        string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	URLResolved string `json:"url_resolved"`
	Homepage    string `json:"homepage"`
	Favicon     string `json:"favicon"`
	Tags        string `json:"tags"` // Comma-separated genre/category labels
	Country     string `json:"country"`
	CountryCode string `json:"countrycode"`
	State       string `json:"state"`
	Language    string `json:"language"`
	Votes       int    `json:"votes"`
	Codec       string `json:"codec"`
	Bitrate     int    `json:"bitrate"`
	ClickCount  int    `json:"clickcount"`
}

// Normalize cleans a freshly decoded record in place. A favicon that is not
// a well-formed absolute URL becomes NoFavicon, and an empty resolved stream
// URL falls back to the primary URL. Normalization is all-or-nothing per
// record: there is no partially-normalized state.
func (s *Station) Normalize() {
	if !strings.HasPrefix(s.Favicon, "http") {
		s.Favicon = NoFavicon
	}
	if s.URLResolved == "" {
		s.URLResolved = s.URL
	}
}

// PlaybackURL returns the preferred playback target: the resolved stream URL
// when present, the primary URL otherwise.
func (s *Station) PlaybackURL() string {
	if s.URLResolved != "" {
		return s.URLResolved
	}
	return s.URL
}

// TagList splits the comma-separated tag field into trimmed labels, dropping
// empty entries.
func (s *Station) TagList() []string {
	if s.Tags == "" {
		return nil
	}
	parts := strings.Split(s.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasFavicon reports whether the station carries a usable icon URL.
func (s *Station) HasFavicon() bool {
	return s.Favicon != "" && s.Favicon != NoFavicon
}
