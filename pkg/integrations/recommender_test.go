package integrations

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

func TestNewRecommender(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		if _, err := NewRecommender(RecommenderConfig{}); err == nil {
			t.Error("expected error without API key")
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		rec, err := NewRecommender(RecommenderConfig{APIKey: "sk-test"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.model != "gpt-4o-mini" {
			t.Errorf("unexpected default model: %s", rec.model)
		}
		if rec.maxRetries != 3 {
			t.Errorf("unexpected default retries: %d", rec.maxRetries)
		}
	})
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"raw array", `[{"title":"A","url":"https://x/a"}]`, 1, false},
		{"empty array", `[]`, 0, false},
		{"json fence", "```json\n[{\"title\":\"A\",\"url\":\"https://x/a\"}]\n```", 1, false},
		{"bare fence", "```\n[]\n```", 0, false},
		{"surrounding whitespace", "  \n[]\n  ", 0, false},
		{"prose instead of json", "Sure! Here are the events.", 0, true},
		{"object instead of array", `{"title":"A"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := parseSelection(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, len(events))
			}
		})
	}
}

func completionResponse(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-test",
		"object": "chat.completion",
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}]
	}`, content)
}

func newTestRecommender(t *testing.T, server *httptest.Server) *Recommender {
	t.Helper()
	rec, err := NewRecommender(RecommenderConfig{
		APIKey:     "sk-test",
		BaseURL:    server.URL + "/v1",
		MaxRetries: 1,
	})
	if err != nil {
		t.Fatalf("failed to create recommender: %v", err)
	}
	return rec
}

func TestRecommender_SelectEvents(t *testing.T) {
	upcoming := []domain.Event{
		{Title: "Planet of Zeus", URL: "https://www.more.com/gig/zeus", StartDate: "2025-10-16"},
		{Title: "Jazz Night", URL: "https://www.more.com/gig/jazz", StartDate: "2025-10-18"},
	}
	profile := &domain.TasteProfile{
		Artists:     []string{"Planet of Zeus"},
		Genres:      []string{"greek rock"},
		RetrievedAt: time.Now(),
	}

	t.Run("keeps only known urls", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			fmt.Fprint(w, completionResponse(
				`[{"title":"Planet of Zeus","url":"https://www.more.com/gig/zeus","start_date":"2025-10-16"},`+
					`{"title":"Invented Gig","url":"https://www.more.com/gig/invented"}]`))
		}))
		defer server.Close()

		events, err := newTestRecommender(t, server).SelectEvents(context.Background(), profile, upcoming)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if events[0].URL != "https://www.more.com/gig/zeus" {
			t.Errorf("unexpected event kept: %s", events[0].URL)
		}
	})

	t.Run("tolerates fenced reply", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, completionResponse("```json\n[{\"title\":\"Planet of Zeus\",\"url\":\"https://www.more.com/gig/zeus\"}]\n```"))
		}))
		defer server.Close()

		events, err := newTestRecommender(t, server).SelectEvents(context.Background(), profile, upcoming)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 1 {
			t.Errorf("expected 1 event, got %d", len(events))
		}
	})

	t.Run("no upcoming events short-circuits", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		events, err := newTestRecommender(t, server).SelectEvents(context.Background(), profile, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if events == nil || len(events) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", events)
		}
		if called {
			t.Error("expected no API call for empty event list")
		}
	})

	t.Run("nil profile rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		if _, err := newTestRecommender(t, server).SelectEvents(context.Background(), nil, upcoming); err == nil {
			t.Error("expected error for nil profile")
		}
	})

	t.Run("api failure surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestRecommender(t, server).SelectEvents(context.Background(), profile, upcoming)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "event selection failed") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestBuildUserPrompt(t *testing.T) {
	profile := &domain.TasteProfile{Artists: []string{"Alpha"}, Genres: []string{"rock"}}
	events := []domain.Event{{Title: "Gig", URL: "https://x/gig"}}

	prompt, err := buildUserPrompt(profile, events)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, fragment := range []string{"spotify_tastes", "upcoming_events", "matching_rules", "Alpha", "https://x/gig"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
}
