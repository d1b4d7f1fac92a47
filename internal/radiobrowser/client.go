// Package radiobrowser provides the HTTP client for the radio-browser
// station directory.
package radiobrowser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sonicwave-radio/sonicwave/internal/station"
)

const (
	baseURL        = "https://de1.api.radio-browser.info"
	searchPath     = "/json/stations/search"
	requestTimeout = 30 * time.Second

	// DefaultLimit is applied when a search carries no explicit limit.
	DefaultLimit = 50
)

// ErrTimeout marks a directory call that exceeded its deadline. Callers can
// distinguish it from a generic upstream failure with errors.Is.
var ErrTimeout = errors.New("directory request timed out")

// Filters narrows a station search. Absent fields are omitted from the
// outbound query, never sent as empty values.
type Filters struct {
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
	Tag     string `json:"tag,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// Client is the HTTP client for the radio-browser search API. It holds no
// state beyond the underlying transport.
type Client struct {
	client *resty.Client
}

// NewClient creates a directory client with sensible defaults.
func NewClient() *Client {
	return NewClientWithBaseURL(baseURL)
}

// NewClientWithBaseURL creates a directory client against a specific host,
// used by the proxy deployment and by tests.
func NewClientWithBaseURL(url string) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(url).
			SetTimeout(requestTimeout),
	}
}

// Search queries the directory with the given filters. Results are sorted by
// descending popularity, broken stations are hidden and only secure-transport
// streams are requested. Every returned record is normalized; on any
// transport or non-success response the error is returned to the caller so
// it can decide whether to preserve its previous result set.
func (c *Client) Search(ctx context.Context, filters Filters) ([]station.Station, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := c.client.R().SetContext(ctx)
	if filters.Name != "" {
		req.SetQueryParam("name", filters.Name)
	}
	if filters.Country != "" {
		req.SetQueryParam("country", filters.Country)
	}
	if filters.Tag != "" {
		req.SetQueryParam("tag", filters.Tag)
	}
	req.SetQueryParams(map[string]string{
		"limit":      strconv.Itoa(limit),
		"hidebroken": "true",
		"order":      "clickcount",
		"reverse":    "true",
		"is_https":   "true",
	})

	resp, err := req.Get(searchPath)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("failed to search stations: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("directory returned status %d: %s", resp.StatusCode(), resp.Status())
	}

	var stations []station.Station
	if err := json.Unmarshal(resp.Body(), &stations); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	for i := range stations {
		stations[i].Normalize()
	}

	log.Debug().Int("count", len(stations)).Str("tag", filters.Tag).
		Str("country", filters.Country).Str("name", filters.Name).
		Msg("Directory search completed")

	return stations, nil
}

// TopStations fetches the most popular stations: a search with no name,
// country or tag, relying on the directory's popularity ordering.
func (c *Client) TopStations(ctx context.Context, limit int) ([]station.Station, error) {
	return c.Search(ctx, Filters{Limit: limit})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
