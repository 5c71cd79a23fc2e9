package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	Server          ServerConfig          `json:"server"`
	Database        DatabaseConfig        `json:"database"`
	Spotify         SpotifyConfig         `json:"spotify"`
	OpenAI          OpenAIConfig          `json:"openai"`
	Scraper         ScraperConfig         `json:"scraper"`
	Recommendations RecommendationsConfig `json:"recommendations"`
}

// ServerConfig for HTTP server settings
type ServerConfig struct {
	Port         string `json:"port"`
	ReadTimeout  int    `json:"read_timeout_seconds"`
	WriteTimeout int    `json:"write_timeout_seconds"`
}

// DatabaseConfig for the SQLite store
type DatabaseConfig struct {
	Path string `json:"path"`
}

// SpotifyConfig for the taste-profile source. The refresh token is obtained
// out of band (one interactive authorization); only its exchange for access
// tokens happens here.
type SpotifyConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	TimeRange    string `json:"time_range"`
}

// OpenAIConfig for the recommendation model
type OpenAIConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
}

// ScraperConfig for the listing scraper
type ScraperConfig struct {
	UserAgent        string `json:"user_agent"`
	RateLimitSeconds int    `json:"rate_limit_seconds"`
	Timeout          int    `json:"timeout_seconds"`
	MaxPages         int    `json:"max_pages"`
}

// RecommendationsConfig controls the gather/suggest pipeline
type RecommendationsConfig struct {
	Days           int    `json:"days"`
	LocationOnly   bool   `json:"location_only"`
	LocationTitle  string `json:"location_title"`
	GatherCron     string `json:"gather_cron"`
	SuggestionCron string `json:"suggestion_cron"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values using the pattern NEVERMISS_SECTION_KEY
func Load(configPath string) (*Config, error) {
	config := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyDefaults(config)
	applyEnvOverrides(config)

	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 30
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 30
	}
	if config.Database.Path == "" {
		config.Database.Path = "./nevermiss.db"
	}
	if config.Spotify.TimeRange == "" {
		config.Spotify.TimeRange = "long_term"
	}
	if config.OpenAI.Model == "" {
		config.OpenAI.Model = "gpt-4o-mini"
	}
	if config.Scraper.UserAgent == "" {
		config.Scraper.UserAgent = "Mozilla/5.0 (compatible; NeverMiss/1.0)"
	}
	if config.Scraper.RateLimitSeconds == 0 {
		config.Scraper.RateLimitSeconds = 2
	}
	if config.Scraper.Timeout == 0 {
		config.Scraper.Timeout = 30
	}
	if config.Scraper.MaxPages == 0 {
		config.Scraper.MaxPages = 30
	}
	if config.Recommendations.Days == 0 {
		config.Recommendations.Days = 30
	}
	if config.Recommendations.LocationTitle == "" {
		config.Recommendations.LocationTitle = "Αττική"
	}
	if config.Recommendations.GatherCron == "" {
		config.Recommendations.GatherCron = "30 4 * * *"
	}
	if config.Recommendations.SuggestionCron == "" {
		config.Recommendations.SuggestionCron = "30 5 * * *"
	}
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("NEVERMISS_SERVER_PORT"); v != "" {
		config.Server.Port = v
	}
	if v := os.Getenv("NEVERMISS_DATABASE_PATH"); v != "" {
		config.Database.Path = v
	}
	if v := os.Getenv("NEVERMISS_SPOTIFY_CLIENT_ID"); v != "" {
		config.Spotify.ClientID = v
	}
	if v := os.Getenv("NEVERMISS_SPOTIFY_CLIENT_SECRET"); v != "" {
		config.Spotify.ClientSecret = v
	}
	if v := os.Getenv("NEVERMISS_SPOTIFY_REFRESH_TOKEN"); v != "" {
		config.Spotify.RefreshToken = v
	}
	if v := os.Getenv("NEVERMISS_OPENAI_API_KEY"); v != "" {
		config.OpenAI.APIKey = v
	}
	if v := os.Getenv("NEVERMISS_OPENAI_MODEL"); v != "" {
		config.OpenAI.Model = v
	}
	if v := os.Getenv("NEVERMISS_OPENAI_BASE_URL"); v != "" {
		config.OpenAI.BaseURL = v
	}
	if v := os.Getenv("NEVERMISS_LOCATION_TITLE"); v != "" {
		config.Recommendations.LocationTitle = v
	}
}

// Validate checks if required configurations are present
func (c *Config) Validate() error {
	var missing []string

	if c.Database.Path == "" {
		missing = append(missing, "database.path")
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		missing = append(missing, "spotify.client_id and spotify.client_secret")
	}
	if c.Spotify.RefreshToken == "" {
		missing = append(missing, "spotify.refresh_token")
	}
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "openai.api_key")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}
