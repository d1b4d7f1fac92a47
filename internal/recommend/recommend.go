// Package recommend provides the client for the AI recommendation service.
//
// Unlike the directory client, this client never fails: any transport error,
// non-success status or malformed body degrades to a safe fallback
// recommendation, so a broken AI backend can never block the listening
// experience.
package recommend

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sonicwave-radio/sonicwave/internal/radiobrowser"
)

const (
	recommendPath  = "/api/recommend"
	requestTimeout = 30 * time.Second
)

// Message is a single turn of the recommendation conversation, oldest first.
// Content is forwarded verbatim to the upstream model and never interpreted
// here.
type Message struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// Vibe is optional AI-suggested color/mood metadata, cosmetic only.
type Vibe struct {
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
	Mood         string `json:"mood"`
}

// Recommendation is the structured result of a prompt. SearchQuery is always
// present, even in the fallback; Reasoning is always displayable text.
type Recommendation struct {
	Reasoning             string               `json:"reasoning"`
	SearchQuery           radiobrowser.Filters `json:"searchQuery"`
	SuggestedStationNames []string             `json:"suggestedStationNames,omitempty"`
	Vibe                  *Vibe                `json:"vibe,omitempty"`
}

// Fallback returns the recommendation served when the AI backend is
// unreachable or returns garbage: a generic upbeat genre with an apologetic
// reasoning string.
func Fallback() *Recommendation {
	return &Recommendation{
		Reasoning:   "The AI DJ is currently unavailable. Here's a selection of pop music to keep you going!",
		SearchQuery: radiobrowser.Filters{Tag: "pop"},
	}
}

// Client talks to the recommendation endpoint of a sonicwaved deployment.
type Client struct {
	client *resty.Client
}

// NewClient creates a recommendation client against the given service base
// URL.
func NewClient(baseURL string) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(requestTimeout),
	}
}

type recommendRequest struct {
	UserPrompt string    `json:"userPrompt"`
	History    []Message `json:"history,omitempty"`
}

// Recommend translates a free-text prompt (plus optional conversation
// history) into a structured recommendation. It always resolves: every
// failure path returns Fallback() with a nil error.
func (c *Client) Recommend(ctx context.Context, prompt string, history []Message) *Recommendation {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(recommendRequest{UserPrompt: prompt, History: history}).
		Post(recommendPath)
	if err != nil {
		log.Warn().Err(err).Msg("Recommendation request failed, using fallback")
		return Fallback()
	}

	if !resp.IsSuccess() {
		log.Warn().Int("status", resp.StatusCode()).Msg("Recommendation service returned non-success, using fallback")
		return Fallback()
	}

	rec, err := parseRecommendation(resp.Body())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse recommendation, using fallback")
		return Fallback()
	}

	return rec
}

// parseRecommendation decodes a recommendation body. If the payload is not
// bare JSON (a model wrapping its answer in prose), the first balanced
// {...} block is extracted before parsing.
func parseRecommendation(body []byte) (*Recommendation, error) {
	raw := ExtractJSONObject(string(body))

	var rec Recommendation
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	if rec.Reasoning == "" {
		// The search query is genuine, so the apologetic fallback text
		// would be misleading here.
		rec.Reasoning = "Here's a selection tuned to your request."
	}
	return &rec, nil
}

// ExtractJSONObject returns the first balanced top-level {...} block in s,
// or s unchanged when no such block exists. Braces inside JSON strings are
// skipped. Models occasionally wrap their JSON answer in prose even when
// asked for a JSON mime type.
func ExtractJSONObject(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if inString {
				continue
			}
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if inString {
				continue
			}
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return s
}
