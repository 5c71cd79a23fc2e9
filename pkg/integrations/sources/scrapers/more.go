package scrapers

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

const (
	moreBaseURL    = "https://www.more.com"
	moreListingURL = moreBaseURL + "/gr-el/tickets/music/"
)

// Pagination link labels seen on the listing, localized and not.
var nextLinkTexts = map[string]bool{
	"επόμενη": true, "επομενη": true, "next": true, "»": true, ">": true,
}

// MoreScraper walks the server-rendered more.com music listing and extracts
// one RawCard per schema.org/Event article. It follows pagination up to a
// page cap and de-dupes cards by URL across pages.
type MoreScraper struct {
	*BaseScraper
	listingURL string
	maxPages   int
}

func NewMoreScraper(config ScrapingConfig, maxPages int) *MoreScraper {
	if maxPages <= 0 {
		maxPages = 30
	}
	return &MoreScraper{
		BaseScraper: NewBaseScraper(config),
		listingURL:  moreListingURL,
		maxPages:    maxPages,
	}
}

func (m *MoreScraper) GetName() string {
	return "more.com"
}

// FetchCards retrieves every listing page and returns the raw cards in page
// order. Cards are returned as scraped; normalization and filtering happen
// downstream.
func (m *MoreScraper) FetchCards(ctx context.Context) ([]domain.RawCard, error) {
	pageURL := m.listingURL
	seen := make(map[string]bool)
	var cards []domain.RawCard

	for page := 0; page < m.maxPages && pageURL != ""; page++ {
		resp, err := m.MakeRequest(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch listing page: %w", err)
		}

		doc, err := html.Parse(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
		}

		for _, card := range m.parseCards(doc) {
			if card.URL != "" && seen[card.URL] {
				continue
			}
			if card.URL != "" {
				seen[card.URL] = true
			}
			cards = append(cards, card)
		}

		pageURL = m.findNextURL(doc, pageURL)
	}

	return cards, nil
}

func (m *MoreScraper) parseCards(doc *html.Node) []domain.RawCard {
	var cards []domain.RawCard

	for _, article := range findAll(doc, func(n *html.Node) bool {
		return n.Data == "article" && attr(n, "itemtype") == "http://schema.org/Event"
	}) {
		style := strings.ReplaceAll(strings.ToLower(attr(article, "style")), " ", "")

		cardURL := metaContent(article, "url")
		if cardURL == "" {
			cardURL = attrOf(findFirst(article, func(n *html.Node) bool {
				return n.Data == "a" && (attr(n, "id") == "ItemLink" || hasClass(n, "play-template__main"))
			}), "href")
		}

		image := metaContent(article, "image")
		if image == "" {
			if img := findFirst(article, func(n *html.Node) bool { return n.Data == "img" }); img != nil {
				image = attr(img, "data-original")
				if image == "" {
					image = attr(img, "src")
				}
			}
		}

		startISO := metaContent(article, "startDate")
		if startISO == "" {
			startISO = attr(article, "data-date")
		}
		if startISO == "" {
			startISO = attr(article, "data-date-time")
		}

		title := m.CleanText(textOf(findFirst(article, func(n *html.Node) bool {
			return n.Data == "h3" && hasClass(n, "playinfo__title")
		})))
		if title == "" {
			title = m.CleanText(textOf(findFirst(article, func(n *html.Node) bool {
				return attr(n, "itemprop") == "name"
			})))
		}
		if title == "" {
			title = "(untitled)"
		}

		venue := m.CleanText(textOf(findFirst(article, func(n *html.Node) bool {
			return n.Data == "span" && attr(n, "id") == "PlayVenue"
		})))
		if venue == "" {
			if loc := findFirst(article, func(n *html.Node) bool { return attr(n, "itemprop") == "location" }); loc != nil {
				venue = m.CleanText(textOf(findFirst(loc, func(n *html.Node) bool {
					return attr(n, "itemprop") == "name"
				})))
			}
		}

		pill := m.CleanText(textOf(findFirst(article, func(n *html.Node) bool {
			return hasClass(n, "playinfo__date")
		})))

		cards = append(cards, domain.RawCard{
			Hidden:   strings.Contains(style, "display:none"),
			URL:      m.resolve(cardURL),
			Image:    m.resolve(image),
			StartISO: strings.TrimSpace(startISO),
			Title:    title,
			Venue:    venue,
			City:     m.itempropValue(article, "addressLocality"),
			Region:   m.itempropValue(article, "addressRegion"),
			Pill:     pill,
		})
	}

	return cards
}

// itempropValue prefers the content attribute over the node text, matching
// how the listing embeds microdata.
func (m *MoreScraper) itempropValue(article *html.Node, prop string) string {
	node := findFirst(article, func(n *html.Node) bool { return attr(n, "itemprop") == prop })
	if node == nil {
		return ""
	}
	if v := strings.TrimSpace(attr(node, "content")); v != "" {
		return v
	}
	return m.CleanText(textOf(node))
}

func (m *MoreScraper) findNextURL(doc *html.Node, currentURL string) string {
	if link := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "a" && strings.Contains(strings.ToLower(attr(n, "rel")), "next") && attr(n, "href") != ""
	}); link != nil {
		if resolved, err := m.NormalizeURL(currentURL, attr(link, "href")); err == nil {
			return resolved
		}
	}

	for _, a := range findAll(doc, func(n *html.Node) bool {
		return n.Data == "a" && attr(n, "href") != ""
	}) {
		if nextLinkTexts[strings.ToLower(m.CleanText(textOf(a)))] {
			if resolved, err := m.NormalizeURL(currentURL, attr(a, "href")); err == nil {
				return resolved
			}
		}
	}

	return ""
}

func (m *MoreScraper) resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return raw
	}
	resolved, err := m.NormalizeURL(moreBaseURL, raw)
	if err != nil {
		return raw
	}
	return resolved
}

// ---- html.Node helpers ----

func metaContent(root *html.Node, prop string) string {
	return attrOf(findFirst(root, func(n *html.Node) bool {
		return n.Data == "meta" && attr(n, "itemprop") == prop
	}), "content")
}

func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	var walk func(*html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n != root && pred(n) {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(root)
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func attrOf(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(attr(n, key))
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
