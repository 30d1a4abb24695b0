// Package gemini wraps the hosted generative-AI service behind the two
// narrow operations the app needs: one-word sentiment tagging for review
// text, and the ScreenPal catalog chatbot. Callers must treat failures as
// non-fatal: review creation substitutes the Neutral tag, and the chat
// endpoint answers with a canned apology.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const modelName = "gemini-1.0-pro"

// Tagger classifies review text with a single sentiment label.
type Tagger interface {
	TagSentiment(ctx context.Context, content string) (string, error)
}

// Chatter answers one ScreenPal chat message. catalog is the rendered
// inventory of the current movie collection, injected into the persona
// prompt.
type Chatter interface {
	Chat(ctx context.Context, catalog, message string) (string, error)
}

// Client talks to the Gemini API.
type Client struct {
	c   *genai.Client
	log *zap.Logger
}

// New builds a Client from an injected API key.
func New(ctx context.Context, apiKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Client{c: c, log: logger}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.c.Close() }

func (c *Client) model() *genai.GenerativeModel {
	m := c.c.GenerativeModel(modelName)
	m.SetTemperature(0.9)
	m.SetTopK(1)
	m.SetTopP(1)
	m.SetMaxOutputTokens(2048)
	m.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
	}
	return m
}

// TagSentiment asks the model for a one-word sentiment label and normalizes
// the answer to one of the four known tags. An unrecognizable answer is an
// error; the caller falls back to Neutral.
func (c *Client) TagSentiment(ctx context.Context, content string) (string, error) {
	resp, err := c.model().GenerateContent(ctx,
		genai.Text("Tell me whether the following sentence's sentiment is positive or negative or something in between. Output should be one word, Positive, Negative, Mixed or Neutral."),
		genai.Text("Sentence "+content),
		genai.Text("Sentiment "),
	)
	if err != nil {
		return "", fmt.Errorf("sentiment call: %w", err)
	}

	raw := firstText(resp)
	tag, ok := NormalizeTag(raw)
	if !ok {
		return "", fmt.Errorf("unrecognized sentiment answer %q", raw)
	}
	return tag, nil
}

// Chat runs one exchange with the ScreenPal persona seeded with the current
// catalog.
func (c *Client) Chat(ctx context.Context, catalog, message string) (string, error) {
	cs := c.model().StartChat()
	cs.History = personaHistory(catalog)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	answer := firstText(resp)
	if answer == "" {
		return "", fmt.Errorf("empty chat answer")
	}
	return answer, nil
}

// NormalizeTag maps a model answer onto one of the four sentiment labels.
func NormalizeTag(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positive":
		return models.TagPositive, true
	case "negative":
		return models.TagNegative, true
	case "mixed":
		return models.TagMixed, true
	case "neutral":
		return models.TagNeutral, true
	}
	return "", false
}

func firstText(resp *genai.GenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
