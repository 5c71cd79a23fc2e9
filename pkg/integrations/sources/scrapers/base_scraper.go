package scrapers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

type ScrapingConfig struct {
	UserAgent    string
	RequestDelay time.Duration
	MaxRetries   int
	Timeout      time.Duration
}

// BaseScraper carries the shared HTTP plumbing for listing scrapers: polite
// rate limiting, retry with backoff on 429/5xx and consistent headers.
type BaseScraper struct {
	httpClient  *http.Client
	config      ScrapingConfig
	rateLimiter *scraperRateLimiter
}

func NewBaseScraper(config ScrapingConfig) *BaseScraper {
	if config.UserAgent == "" {
		config.UserAgent = "Mozilla/5.0 (compatible; NeverMiss/1.0)"
	}
	if config.RequestDelay == 0 {
		config.RequestDelay = 2 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &BaseScraper{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:      config,
		rateLimiter: newScraperRateLimiter(config.RequestDelay),
	}
}

func (b *BaseScraper) MakeRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := b.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", b.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "el-GR,el;q=0.9,en;q=0.8")
	req.Header.Set("Connection", "keep-alive")

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= b.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, lastErr = b.httpClient.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
				}
				continue
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				continue
			}
			break
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", b.config.MaxRetries+1, lastErr)
	}

	return resp, nil
}

// NormalizeURL resolves relativeURL against baseURL.
func (b *BaseScraper) NormalizeURL(baseURL, relativeURL string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	rel, err := url.Parse(relativeURL)
	if err != nil {
		return "", fmt.Errorf("invalid relative URL: %w", err)
	}

	return base.ResolveReference(rel).String(), nil
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace into single spaces.
func (b *BaseScraper) CleanText(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

type scraperRateLimiter struct {
	lastRequest time.Time
	delay       time.Duration
}

func newScraperRateLimiter(delay time.Duration) *scraperRateLimiter {
	return &scraperRateLimiter{
		delay: delay,
	}
}

func (r *scraperRateLimiter) Wait(ctx context.Context) error {
	elapsed := time.Since(r.lastRequest)
	if elapsed < r.delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay - elapsed):
		}
	}
	r.lastRequest = time.Now()
	return nil
}
