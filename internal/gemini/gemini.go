// Package gemini wraps the Google generative-language REST API for the
// recommendation and insights endpoints of sonicwaved.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sonicwave-radio/sonicwave/internal/recommend"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"
	requestTimeout = 25 * time.Second
)

const recommendInstruction = `You are an expert music curator and radio DJ.
Your goal is to translate a user's natural language request (mood, genre, activity, or specific taste)
into search parameters compatible with the Radio Browser API.

The Radio Browser API supports searching by: 'name', 'country', 'tag' (genre).

Analyze the user's request and respond with a JSON object containing:
1. "reasoning": a short, fun reasoning for your choice.
2. "searchQuery": an object with 'tag', 'country', or 'name' to perform the search.
3. "suggestedStationNames": a list of up to 3 specific famous station names if applicable, otherwise empty.

Example:
User: "I want to relax while coding"
Output: {"reasoning": "Here are some low-fidelity beats to help you focus.", "searchQuery": {"tag": "lofi"}}

User: "News from Spain"
Output: {"reasoning": "Catching up on current events from Spain.", "searchQuery": {"country": "Spain", "tag": "news"}}`

const insightsInstruction = `You are the chief editor of "Sonic Magazine", the daily digital magazine of SonicWave Radio.
Generate original, high-quality daily content as a JSON object with these sections:
1. "horoscopes": 12 objects, one per zodiac sign, each with "sign", "prediction" (two musical-energy
   sentences) and "recommendedGenre".
2. "news": 3 short editorial briefs about the music industry, each with "title", "content" and "tag".
3. "trivia": one surprising music or radio history fact with "fact" and "context".
Always respond with a valid JSON object.`

// Client is the HTTP client for the generative upstream. It is only
// constructed by sonicwaved; the terminal client never talks to the model
// directly.
type Client struct {
	client *resty.Client
	apiKey string
	model  string
}

// NewClient creates a generative client with the given API key. An empty
// baseURL selects the public endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(requestTimeout),
		apiKey: apiKey,
		model:  defaultModel,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate performs one generateContent call and returns the raw candidate
// text.
func (c *Client) generate(ctx context.Context, instruction string, contents []content) (string, error) {
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: instruction}}},
		Contents:          contents,
		GenerationConfig:  generationConfig{ResponseMimeType: "application/json"},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("generative request failed: %w", err)
	}

	if !resp.IsSuccess() {
		return "", fmt.Errorf("generative upstream returned status %d: %s", resp.StatusCode(), resp.Status())
	}

	var parsed generateResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse generative response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// Recommend asks the model to translate a prompt into a structured station
// search. History turns are forwarded verbatim for conversational context.
func (c *Client) Recommend(ctx context.Context, prompt string, history []recommend.Message) (*recommend.Recommendation, error) {
	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, content{Role: m.Role, Parts: []part{{Text: m.Content}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: prompt}}})

	text, err := c.generate(ctx, recommendInstruction, contents)
	if err != nil {
		return nil, err
	}

	var rec recommend.Recommendation
	if err := json.Unmarshal([]byte(recommend.ExtractJSONObject(text)), &rec); err != nil {
		return nil, fmt.Errorf("model returned unparseable recommendation: %w", err)
	}
	if rec.Reasoning == "" {
		return nil, fmt.Errorf("model returned recommendation without reasoning")
	}

	log.Debug().Str("tag", rec.SearchQuery.Tag).Str("country", rec.SearchQuery.Country).
		Msg("Model recommendation parsed")
	return &rec, nil
}

// Horoscope is one zodiac entry of the daily insights document.
type Horoscope struct {
	Sign             string `json:"sign"`
	Prediction       string `json:"prediction"`
	RecommendedGenre string `json:"recommendedGenre"`
}

// NewsItem is one editorial brief of the daily insights document.
type NewsItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     string `json:"tag"`
}

// Trivia is the daily music-history fact.
type Trivia struct {
	Fact    string `json:"fact"`
	Context string `json:"context"`
}

// Insights is the generated daily magazine content.
type Insights struct {
	Horoscopes []Horoscope `json:"horoscopes"`
	News       []NewsItem  `json:"news"`
	Trivia     Trivia      `json:"trivia"`
}

// GenerateInsights asks the model for today's magazine content.
func (c *Client) GenerateInsights(ctx context.Context) (*Insights, error) {
	contents := []content{{Role: "user", Parts: []part{{Text: "Generate today's content:"}}}}

	text, err := c.generate(ctx, insightsInstruction, contents)
	if err != nil {
		return nil, err
	}

	var ins Insights
	if err := json.Unmarshal([]byte(recommend.ExtractJSONObject(text)), &ins); err != nil {
		return nil, fmt.Errorf("model returned unparseable insights: %w", err)
	}
	return &ins, nil
}

// FallbackInsights is the static magazine document served when the model is
// unreachable.
func FallbackInsights() *Insights {
	return &Insights{
		Horoscopes: []Horoscope{
			{Sign: "Aries", Prediction: "Explosive energy. Fast rhythms will help you channel your drive today.", RecommendedGenre: "Hard Rock"},
			{Sign: "Taurus", Prediction: "You seek comfort and harmony. A classical melody or smooth jazz will be your best refuge.", RecommendedGenre: "Smooth Jazz"},
			{Sign: "Gemini", Prediction: "Your mind needs varied stimuli. Alternate genres to keep your curiosity alive.", RecommendedGenre: "Indie Pop"},
			{Sign: "Cancer", Prediction: "Deep emotional connection. Nostalgic music will bring back great memories.", RecommendedGenre: "Dream Pop"},
			{Sign: "Leo", Prediction: "It is your moment to shine. Play music that makes you the protagonist of your story.", RecommendedGenre: "Synth-Pop"},
			{Sign: "Virgo", Prediction: "You seek order and perfection. The complex structures of classical music will fascinate you.", RecommendedGenre: "Baroque"},
			{Sign: "Libra", Prediction: "Balance above all. Perfectly weighted rhythms for a harmonious day.", RecommendedGenre: "Lo-Fi Beats"},
			{Sign: "Scorpio", Prediction: "Intensity and mystery. Deep, enveloping sounds will resonate with your soul.", RecommendedGenre: "Dark Ambient"},
			{Sign: "Sagittarius", Prediction: "Adventure without limits. Explore rhythms from distant lands and let yourself go.", RecommendedGenre: "World Music"},
			{Sign: "Capricorn", Prediction: "Steady determination. Music that inspires effort and success will be your ally.", RecommendedGenre: "Classical Piano"},
			{Sign: "Aquarius", Prediction: "Innovation and rebellion. Experimental sounds will feed your creativity.", RecommendedGenre: "Electronic Experimental"},
			{Sign: "Pisces", Prediction: "Pure intuition. Dive into aquatic, melancholic soundscapes.", RecommendedGenre: "Post-Rock"},
		},
		News: []NewsItem{
			{
				Title:   "The Cassette Comeback",
				Content: "Collectors around the world report growing demand for analog tapes and their unique warmth.",
				Tag:     "Retro",
			},
			{
				Title:   "Live Spatial Audio",
				Content: "New streaming technologies let listeners experience concerts from home with three-dimensional depth.",
				Tag:     "Technology",
			},
			{
				Title:   "Radio Turns the Dial",
				Content: "Independent web stations keep multiplying, with thousands of new streams indexed every month.",
				Tag:     "Trend",
			},
		},
		Trivia: Trivia{
			Fact:    "What was the first song played in space?",
			Context: "It was 'Jingle Bells', performed by the Gemini 6 astronauts in 1965 on a smuggled harmonica.",
		},
	}
}
