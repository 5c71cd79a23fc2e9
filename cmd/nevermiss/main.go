package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ManosMrgk/NeverMiss/pkg/calendar"
	"github.com/ManosMrgk/NeverMiss/pkg/collectors"
	"github.com/ManosMrgk/NeverMiss/pkg/config"
	"github.com/ManosMrgk/NeverMiss/pkg/domain"
	"github.com/ManosMrgk/NeverMiss/pkg/integrations"
	"github.com/ManosMrgk/NeverMiss/pkg/integrations/sources/scrapers"
	"github.com/ManosMrgk/NeverMiss/pkg/interfaces"
)

func main() {
	log.Println("Starting NeverMiss...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config: %v. Using defaults.", err)
		cfg, _ = config.Load("")
	}

	// Resolve the canonical timezone once; everything downstream receives it
	// as a value.
	loc, degraded := calendar.Zone()
	if degraded {
		log.Printf("Warning: IANA timezone database unavailable, using fixed +03:00 (no DST)")
	}

	db, err := collectors.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	eventRepo, err := collectors.NewEventRepository(db)
	if err != nil {
		log.Fatalf("Failed to create event repository: %v", err)
	}
	suggestionRepo, err := collectors.NewSuggestionRepository(db)
	if err != nil {
		log.Fatalf("Failed to create suggestion repository: %v", err)
	}
	tasteRepo, err := collectors.NewTasteRepository(db)
	if err != nil {
		log.Fatalf("Failed to create taste repository: %v", err)
	}

	scraper := scrapers.NewMoreScraper(scrapers.ScrapingConfig{
		UserAgent:    cfg.Scraper.UserAgent,
		RequestDelay: time.Duration(cfg.Scraper.RateLimitSeconds) * time.Second,
		Timeout:      time.Duration(cfg.Scraper.Timeout) * time.Second,
	}, cfg.Scraper.MaxPages)

	// Taste source and recommender are optional; without them the service
	// still gathers and buckets.
	var tasteSource domain.TasteSource
	if cfg.Spotify.ClientID != "" {
		spotifyClient, err := integrations.NewSpotifyClient(integrations.SpotifyConfig{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RefreshToken: cfg.Spotify.RefreshToken,
			TimeRange:    cfg.Spotify.TimeRange,
		})
		if err != nil {
			log.Printf("Warning: Failed to create Spotify client: %v", err)
		} else {
			tasteSource = spotifyClient
		}
	}

	var selector domain.EventSelector
	if cfg.OpenAI.APIKey != "" {
		recommender, err := integrations.NewRecommender(integrations.RecommenderConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
		if err != nil {
			log.Printf("Warning: Failed to create recommender: %v", err)
		} else {
			selector = recommender
		}
	}

	service := interfaces.NewEventService(
		eventRepo, suggestionRepo, tasteRepo,
		scraper, tasteSource, selector, loc,
		interfaces.EventServiceConfig{
			Days:          cfg.Recommendations.Days,
			LocationOnly:  cfg.Recommendations.LocationOnly,
			LocationTitle: cfg.Recommendations.LocationTitle,
		},
	)

	newsletter, err := interfaces.NewNewsletterRenderer(loc)
	if err != nil {
		log.Fatalf("Failed to create newsletter renderer: %v", err)
	}

	handler := interfaces.NewEventHandler(service, newsletter, loc)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	scheduler, err := interfaces.NewScheduler(service, loc, interfaces.SchedulerConfig{
		GatherSpec:     cfg.Recommendations.GatherCron,
		SuggestionSpec: cfg.Recommendations.SuggestionCron,
		Days:           cfg.Recommendations.Days,
	})
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped. See you at the next gig.")
}
