package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// Recommender asks a chat model to pick the events matching a taste profile.
// The model may only select from the supplied events; anything it invents is
// discarded.
type Recommender struct {
	client     *openai.Client
	model      string
	maxRetries int
}

type RecommenderConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
}

func NewRecommender(config RecommenderConfig) (*Recommender, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Recommender{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      config.Model,
		maxRetries: config.MaxRetries,
	}, nil
}

const systemPrompt = "You are an event-recommendation assistant. Select ONLY from the provided events.\n" +
	"Return a RAW JSON array (no prose, no markdown fences) of Event objects with EXACT fields:\n" +
	"title, url, start_date, venue, city, region, image.\n" +
	"Do not invent or modify details. If nothing matches, return []."

type recommendPayload struct {
	SpotifyTastes  *domain.TasteProfile `json:"spotify_tastes"`
	UpcomingEvents []domain.Event       `json:"upcoming_events"`
	MatchingRules  []string             `json:"matching_rules"`
}

func buildUserPrompt(profile *domain.TasteProfile, upcoming []domain.Event) (string, error) {
	payload := recommendPayload{
		SpotifyTastes:  profile,
		UpcomingEvents: upcoming,
		MatchingRules: []string{
			"Prefer events whose title contains a favorite artist name (case-insensitive).",
			"Secondarily, match by genre relevance if artist not present.",
			"If an artist is not explicitly named but someone with similar sound and vibe is, you may include it.",
			"Avoid guessing or low-confidence matches.",
			"If unsure, omit the event.",
			"Both artists and genres are ordered by most-favorite first.",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal prompt payload: %w", err)
	}

	return "Select relevant events for the user based on Spotify favorites. " +
		"Return ONLY a JSON array with the exact Event fields.\n\n" + string(body), nil
}

// SelectEvents runs the selection prompt and parses the reply. Only events
// whose URL was in the input survive.
func (r *Recommender) SelectEvents(ctx context.Context, profile *domain.TasteProfile, upcoming []domain.Event) ([]domain.Event, error) {
	if profile == nil {
		return nil, fmt.Errorf("taste profile is required")
	}
	if len(upcoming) == 0 {
		return []domain.Event{}, nil
	}

	userPrompt, err := buildUserPrompt(profile, upcoming)
	if err != nil {
		return nil, err
	}

	var content string
	err = r.doWithRetry(ctx, func() error {
		resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: r.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: 0.2,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("event selection failed: %w", err)
	}

	selected, err := parseSelection(content)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(upcoming))
	for _, ev := range upcoming {
		known[ev.URL] = true
	}
	kept := selected[:0]
	for _, ev := range selected {
		if known[ev.URL] {
			kept = append(kept, ev)
		}
	}

	return kept, nil
}

// parseSelection tolerates models that wrap the array in markdown fences
// despite instructions.
func parseSelection(content string) ([]domain.Event, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var events []domain.Event
	if err := json.Unmarshal([]byte(content), &events); err != nil {
		return nil, fmt.Errorf("failed to parse selection response: %w", err)
	}
	return events, nil
}

func (r *Recommender) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
