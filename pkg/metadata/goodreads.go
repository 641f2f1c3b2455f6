package metadata

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/html"
)

const goodreadsBaseURL = "https://www.goodreads.com"

// goodreads scrapes the Goodreads website. There is no public API, so the
// search page is walked for book links and detail pages are read through the
// JSON-LD block they embed. Selector walking is inherently fragile coupling to
// third-party markup, which is exactly why it lives behind the Provider
// interface. Goodreads is also sensitive to request rates; bulk refreshes add
// a per-book delay for it (see the refresh throttle policy).
type goodreads struct {
	base string
	http *httpClient
}

// NewGoodreads returns the Goodreads provider.
func NewGoodreads() Provider {
	return &goodreads{base: goodreadsBaseURL, http: newHTTPClient()}
}

func (p *goodreads) Name() string {
	return ProviderGoodreads
}

var goodreadsBookIDRE = regexp.MustCompile(`/book/show/(\d+)`)

func (p *goodreads) Search(ctx context.Context, q Query) ([]string, error) {
	terms, err := BuildSearchTerms(q)
	if err != nil {
		return nil, err
	}

	query := terms.ISBN
	if query == "" {
		query = terms.Title
		if terms.Author != "" {
			query += " " + terms.Author
		}
	}

	doc, err := p.http.getDocument(ctx, fmt.Sprintf("%s/search?q=%s", p.base, url.QueryEscape(query)))
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := map[string]struct{}{}
	for _, a := range findAll(doc, func(n *html.Node) bool {
		return n.Data == "a" && hasClass(n, "bookTitle")
	}) {
		m := goodreadsBookIDRE.FindStringSubmatch(getAttr(a, "href"))
		if m == nil {
			continue
		}
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, m[1])
	}
	return ids, nil
}

// goodreadsLD is the JSON-LD block embedded in a book page.
type goodreadsLD struct {
	Name          string `json:"name"`
	Image         string `json:"image"`
	ISBN          string `json:"isbn"`
	NumberOfPages int    `json:"numberOfPages"`
	InLanguage    string `json:"inLanguage"`
	Author        []struct {
		Name string `json:"name"`
	} `json:"author"`
	AggregateRating struct {
		RatingValue float64 `json:"ratingValue"`
		RatingCount int     `json:"ratingCount"`
		ReviewCount int     `json:"reviewCount"`
	} `json:"aggregateRating"`
}

var goodreadsSeriesRE = regexp.MustCompile(`^(.*?)\s*#(\d+)\s*$`)

func (p *goodreads) FetchDetail(ctx context.Context, id string) (*Record, error) {
	doc, err := p.http.getDocument(ctx, fmt.Sprintf("%s/book/show/%s", p.base, url.PathEscape(id)))
	if err != nil {
		return nil, err
	}

	ld, err := extractJSONLD(doc)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		Provider:       ProviderGoodreads,
		ProviderBookID: id,
		Title:          optString(ld.Name),
		PageCount:      optInt(ld.NumberOfPages),
		Language:       optString(ld.InLanguage),
		Rating:         optFloat(ld.AggregateRating.RatingValue),
		RatingCount:    optInt(ld.AggregateRating.RatingCount),
		ReviewCount:    optInt(ld.AggregateRating.ReviewCount),
		ThumbnailURL:   optString(ld.Image),
	}

	switch len(ld.ISBN) {
	case 13:
		rec.ISBN13 = optString(ld.ISBN)
	case 10:
		rec.ISBN10 = optString(ld.ISBN)
	}

	for _, a := range ld.Author {
		if a.Name != "" {
			rec.Authors = append(rec.Authors, a.Name)
		}
	}

	// Description and series only exist in the markup, not the JSON-LD.
	if desc := findFirst(doc, func(n *html.Node) bool {
		return getAttr(n, "data-testid") == "description"
	}); desc != nil {
		rec.Description = optString(strings.TrimSpace(textContent(desc)))
	}

	for _, a := range findAll(doc, func(n *html.Node) bool {
		return n.Data == "a" && strings.Contains(getAttr(n, "href"), "/series/")
	}) {
		if m := goodreadsSeriesRE.FindStringSubmatch(strings.TrimSpace(textContent(a))); m != nil {
			rec.SeriesName = optString(strings.TrimSpace(m[1]))
			if num, err := strconv.Atoi(m[2]); err == nil {
				rec.SeriesNumber = &num
			}
			break
		}
	}

	// Genre links double as categories.
	for _, g := range findAll(doc, func(n *html.Node) bool {
		return getAttr(n, "data-testid") == "genre"
	}) {
		if text := strings.TrimSpace(textContent(g)); text != "" {
			rec.Categories = append(rec.Categories, text)
		}
	}

	return rec, nil
}

// extractJSONLD finds the first application/ld+json script in the document.
// Its absence is a structural failure: the page layout has changed or we got
// an interstitial instead of a book page.
func extractJSONLD(doc *html.Node) (*goodreadsLD, error) {
	script := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "script" && getAttr(n, "type") == "application/ld+json"
	})
	if script == nil || script.FirstChild == nil {
		return nil, errors.Wrap(ErrProviderUnavailable, "goodreads: no JSON-LD block in book page")
	}

	var ld goodreadsLD
	if err := json.Unmarshal([]byte(script.FirstChild.Data), &ld); err != nil {
		return nil, errors.Wrapf(ErrProviderUnavailable, "goodreads: bad JSON-LD: %v", err)
	}
	return &ld, nil
}

func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && pred(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, pred)...)
	}
	return out
}

func getAttr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
