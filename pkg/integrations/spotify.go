package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

const spotifyScope = "user-top-read"

// SpotifyClient reads a user's top artists and derives a taste profile. It
// speaks the Web API with a user token minted from a long-lived refresh
// token; the interactive authorization that produced that token is out of
// scope here.
type SpotifyClient struct {
	baseURL    string
	httpClient *http.Client
	timeRange  string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TimeRange    string
}

var spotifyEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.spotify.com/authorize",
	TokenURL: "https://accounts.spotify.com/api/token",
}

func NewSpotifyClient(config SpotifyConfig) (*SpotifyClient, error) {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("spotify client ID and secret are required")
	}
	if config.RefreshToken == "" {
		return nil, fmt.Errorf("spotify refresh token is required")
	}
	timeRange := config.TimeRange
	if timeRange == "" {
		timeRange = "long_term"
	}
	switch timeRange {
	case "short_term", "medium_term", "long_term":
	default:
		return nil, fmt.Errorf("invalid time range: %s", timeRange)
	}

	conf := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     spotifyEndpoint,
		Scopes:       []string{spotifyScope},
	}

	// The TokenSource refreshes access tokens transparently for the life of
	// the process.
	source := conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: config.RefreshToken})
	httpClient := oauth2.NewClient(context.Background(), source)
	httpClient.Timeout = 15 * time.Second

	return &SpotifyClient{
		baseURL:    "https://api.spotify.com/v1",
		httpClient: httpClient,
		timeRange:  timeRange,
	}, nil
}

type spotifyTopArtist struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type spotifyTopArtistsResponse struct {
	Items []spotifyTopArtist `json:"items"`
}

// TopArtists fetches the user's top artists for the configured time range,
// ordered most-listened first.
func (c *SpotifyClient) TopArtists(ctx context.Context, limit int) ([]spotifyTopArtist, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	reqURL := fmt.Sprintf("%s/me/top/artists?time_range=%s&limit=%d",
		c.baseURL, url.QueryEscape(c.timeRange), limit)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create top artists request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top artists: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrRateLimitExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify top artists failed: status %d", resp.StatusCode)
	}

	var topResp spotifyTopArtistsResponse
	if err := json.NewDecoder(resp.Body).Decode(&topResp); err != nil {
		return nil, fmt.Errorf("failed to decode top artists response: %w", err)
	}

	return topResp.Items, nil
}

// FetchTasteProfile builds a ranked taste profile: artist names in listening
// order and genres ranked by how many top artists carry them.
func (c *SpotifyClient) FetchTasteProfile(ctx context.Context) (*domain.TasteProfile, error) {
	artists, err := c.TopArtists(ctx, 50)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(artists))
	counts := make(map[string]int)
	order := make(map[string]int)
	for i, a := range artists {
		names = append(names, a.Name)
		for _, g := range a.Genres {
			g = strings.ToLower(strings.TrimSpace(g))
			if g == "" {
				continue
			}
			if _, seen := counts[g]; !seen {
				order[g] = i
			}
			counts[g]++
		}
	}

	genres := make([]string, 0, len(counts))
	for g := range counts {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		if counts[genres[i]] != counts[genres[j]] {
			return counts[genres[i]] > counts[genres[j]]
		}
		return order[genres[i]] < order[genres[j]]
	})
	if len(genres) > 25 {
		genres = genres[:25]
	}

	return &domain.TasteProfile{
		Artists:     names,
		Genres:      genres,
		RetrievedAt: time.Now(),
	}, nil
}
