package trends

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultDiscoverSelector matches the anchor list of the public
// trending-searches export page.
const DefaultDiscoverSelector = ".trending-list a, ol.trends li a"

// Discover scrapes candidate keywords from a trending-searches HTML
// page. It feeds the strategy file; discovered terms are suggestions,
// never added to a run automatically.
func (c *Client) Discover(ctx context.Context, pageURL, selector string) ([]string, error) {
	if selector == "" {
		selector = DefaultDiscoverSelector
	}

	resp, err := c.httpClient.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("discover request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]bool)
	var keywords []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		term := strings.TrimSpace(s.Text())
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		keywords = append(keywords, term)
	})

	c.logger.WithFields(map[string]interface{}{
		"url":      pageURL,
		"keywords": len(keywords),
	}).Info("Keyword discovery completed")

	return keywords, nil
}
