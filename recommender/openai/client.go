package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/moodtunes/moodtunes-backend/recommender"
	"github.com/moodtunes/moodtunes-backend/utils"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	// Non-zero so repeated calls on the same journal text vary. The varied
	// suggestion contract forbids memoizing by input anywhere downstream.
	temperature = 0.8

	requestTimeout = 15 * time.Second
)

const systemPrompt = "You are a mood analysis assistant. Respond with JSON only, no prose and no markdown."

const userPromptTemplate = `Analyze the mood of this journal entry and recommend one song matching it.

Journal entry:
%s

Return a JSON object with exactly this structure:
{"mood": "<one or two word mood description>", "songRecommendation": {"title": "...", "artist": "...", "genre": "..."}}`

// Client calls the chat-completions API as the language-inference
// collaborator.
type Client struct {
	http  *resty.Client
	model string
}

// New creates a Client from OPENAI_API_KEY, with optional OPENAI_BASE_URL
// and OPENAI_MODEL overrides.
func New() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetAuthToken(apiKey)
	return &Client{http: http, model: model}, nil
}

// NewWithBaseURL builds a Client against an explicit endpoint, used by tests.
func NewWithBaseURL(baseURL string, apiKey string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetAuthToken(apiKey)
	return &Client{http: http, model: defaultModel}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Infer sends the journal text for analysis and parses the free-form model
// output into the structured inference result. Transport and non-200
// failures surface as CollaboratorUnavailableError, non-conforming output
// as InferenceParseError.
func (c *Client) Infer(ctx context.Context, journalText string) (*recommender.InferenceResult, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, journalText)},
		},
	}

	var parsed chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		return nil, &utils.CollaboratorUnavailableError{Collaborator: "inference", Err: err}
	}
	if resp.IsError() {
		return nil, &utils.CollaboratorUnavailableError{
			Collaborator: "inference",
			Err:          fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()),
		}
	}
	if parsed.Error != nil {
		return nil, &utils.CollaboratorUnavailableError{
			Collaborator: "inference",
			Err:          fmt.Errorf("api error: %s", parsed.Error.Message),
		}
	}
	if len(parsed.Choices) == 0 {
		return nil, &utils.InferenceParseError{Raw: resp.String(), Err: fmt.Errorf("no choices in response")}
	}

	return parseContent(parsed.Choices[0].Message.Content)
}

// parseContent unmarshals the model output, tolerating markdown code fences
// around the JSON body.
func parseContent(content string) (*recommender.InferenceResult, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result recommender.InferenceResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &utils.InferenceParseError{Raw: content, Err: err}
	}
	if result.Mood == "" {
		return nil, &utils.InferenceParseError{Raw: content, Err: fmt.Errorf("missing mood field")}
	}
	return &result, nil
}
