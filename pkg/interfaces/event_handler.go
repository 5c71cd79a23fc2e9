package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// EventHandler exposes the pipeline over HTTP.
type EventHandler struct {
	service    domain.EventService
	newsletter *NewsletterRenderer
	loc        *time.Location
}

func NewEventHandler(service domain.EventService, newsletter *NewsletterRenderer, loc *time.Location) *EventHandler {
	return &EventHandler{
		service:    service,
		newsletter: newsletter,
		loc:        loc,
	}
}

func (h *EventHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/events", h.ListEvents).Methods("GET")
	router.HandleFunc("/api/gather", h.Gather).Methods("POST")
	router.HandleFunc("/api/recommendations", h.Recommend).Methods("POST")
	router.HandleFunc("/api/buckets", h.GetBuckets).Methods("GET")
	router.HandleFunc("/newsletter", h.Newsletter).Methods("GET")
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := h.service.Events(ctx)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

func (h *EventHandler) Gather(w http.ResponseWriter, r *http.Request) {
	// Scraping the whole listing takes a while.
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	days := 0
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			h.respondWithError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	anchor := time.Now().In(h.loc)
	if startStr := r.URL.Query().Get("start"); startStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", startStr, h.loc)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		anchor = parsed
	}

	events, err := h.service.Gather(ctx, anchor, days)
	if err != nil {
		h.respondWithError(w, http.StatusBadGateway, "gather failed")
		return
	}

	h.respondWithJSON(w, http.StatusOK, domain.EventListResponse{Events: events, Total: len(events)})
}

func (h *EventHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	suggestion, err := h.service.Recommend(ctx, time.Now().In(h.loc))
	if err != nil {
		// The service wraps sentinels with context, so match the chain.
		switch {
		case errors.Is(err, domain.ErrRateLimitExceeded):
			h.respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		case errors.Is(err, domain.ErrTasteNotFound):
			h.respondWithError(w, http.StatusConflict, "no taste profile available")
		default:
			h.respondWithError(w, http.StatusBadGateway, "recommendation failed")
		}
		return
	}

	h.respondWithJSON(w, http.StatusOK, suggestion)
}

func (h *EventHandler) GetBuckets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	today, ok := h.todayParam(w, r)
	if !ok {
		return
	}

	buckets, err := h.service.Buckets(ctx, today)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondWithJSON(w, http.StatusOK, buckets)
}

func (h *EventHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	today, ok := h.todayParam(w, r)
	if !ok {
		return
	}

	buckets, err := h.service.Buckets(ctx, today)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := h.newsletter.Render(w, *buckets, today); err != nil {
		// Headers are already out; nothing sensible left to send.
		return
	}
}

// todayParam reads the optional today=YYYY-MM-DD override used for previews.
func (h *EventHandler) todayParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	todayStr := r.URL.Query().Get("today")
	if todayStr == "" {
		return time.Now().In(h.loc), true
	}
	parsed, err := time.ParseInLocation("2006-01-02", todayStr, h.loc)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "today must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return parsed, true
}

func (h *EventHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

func (h *EventHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
