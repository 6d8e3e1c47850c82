package fetch

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var yearPattern = regexp.MustCompile(`20\d{2}`)

// DiscoverArchiveLinks scans the regulator's listing pages for statistical
// handbook ZIP links and keys them by the latest year mentioned in the link
// or its anchor text. Years below minYear are ignored. A listing page that
// fails to fetch or parse is skipped; discovery succeeds with whatever the
// remaining pages yield.
func DiscoverArchiveLinks(ctx context.Context, c *Client, pages []string, minYear int, logger *slog.Logger) map[int]string {
	return discoverLinks(ctx, c, pages, minYear, ".zip", logger)
}

// DiscoverReportLinks does the same for the annual-report PDFs published
// alongside the handbooks. The PDFs are cached for manual reference only,
// never parsed.
func DiscoverReportLinks(ctx context.Context, c *Client, pages []string, minYear int, logger *slog.Logger) map[int]string {
	return discoverLinks(ctx, c, pages, minYear, ".pdf", logger)
}

func discoverLinks(ctx context.Context, c *Client, pages []string, minYear int, suffix string, logger *slog.Logger) map[int]string {
	found := make(map[int]string)
	for _, page := range pages {
		body, err := c.Get(ctx, page)
		if err != nil {
			logger.Warn("listing page unavailable", slog.String("url", page), slog.String("error", err.Error()))
			continue
		}
		for href, text := range extractLinks(body) {
			if !strings.HasSuffix(strings.ToLower(href), suffix) {
				continue
			}
			year, ok := latestYear(href + " " + text)
			if !ok || year < minYear {
				continue
			}
			found[year] = absoluteURL(page, href)
		}
	}
	return found
}

// extractLinks returns every anchor's href mapped to its flattened text.
func extractLinks(body []byte) map[string]string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}
	links := make(map[string]string)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					links[strings.TrimSpace(attr.Val)] = nodeText(n)
					break
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// latestYear extracts the ingestion year from a link. Handbook names carry
// the fiscal span ("2023-24", "2022_23"); the span's second half names the
// ingestion year. Spans are distinguished from date path segments like
// "/2025-02/" by requiring the second half to be the start year plus one.
// Links without a span fall back to the highest plain year mentioned.
func latestYear(s string) (int, bool) {
	for _, m := range fySpan.FindAllStringSubmatch(s, -1) {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		tail, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if tail == (start+1)%100 {
			return start + 1, true
		}
	}
	best := 0
	for _, m := range yearPattern.FindAllString(s, -1) {
		if y, err := strconv.Atoi(m); err == nil && y > best {
			best = y
		}
	}
	return best, best > 0
}

var fySpan = regexp.MustCompile(`(20\d{2})[-_](\d{2})`)

func absoluteURL(page, href string) string {
	base, err := url.Parse(page)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
