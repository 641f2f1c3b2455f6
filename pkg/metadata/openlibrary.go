package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const openLibraryBaseURL = "https://openlibrary.org"

// openLibrary talks to the Open Library search and works APIs. Work records
// carry less commercial detail than the other providers (no page counts or
// ratings), so most optional attributes come back nil.
type openLibrary struct {
	base string
	http *httpClient
}

// NewOpenLibrary returns the Open Library provider.
func NewOpenLibrary() Provider {
	return &openLibrary{base: openLibraryBaseURL, http: newHTTPClient()}
}

func (p *openLibrary) Name() string {
	return ProviderOpenLibrary
}

type openLibrarySearch struct {
	Docs []struct {
		Key              string   `json:"key"` // "/works/OL123W"
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
	} `json:"docs"`
}

type openLibraryWork struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Description interface{} `json:"description"` // string or {"type":..., "value":...}
	Subjects    []string    `json:"subjects"`
	Covers      []int       `json:"covers"`
	Authors     []struct {
		Author struct {
			Key string `json:"key"`
		} `json:"author"`
	} `json:"authors"`
}

type openLibraryAuthor struct {
	Name string `json:"name"`
}

func (p *openLibrary) Search(ctx context.Context, q Query) ([]string, error) {
	terms, err := BuildSearchTerms(q)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if terms.ISBN != "" {
		params.Set("q", "isbn:"+terms.ISBN)
	} else {
		params.Set("title", terms.Title)
		if terms.Author != "" {
			params.Set("author", terms.Author)
		}
	}
	params.Set("limit", "10")

	var result openLibrarySearch
	if err := p.http.getJSON(ctx, fmt.Sprintf("%s/search.json?%s", p.base, params.Encode()), &result); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.Docs))
	for _, doc := range result.Docs {
		if id := strings.TrimPrefix(doc.Key, "/works/"); id != "" && id != doc.Key {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (p *openLibrary) FetchDetail(ctx context.Context, id string) (*Record, error) {
	var work openLibraryWork
	if err := p.http.getJSON(ctx, fmt.Sprintf("%s/works/%s.json", p.base, url.PathEscape(id)), &work); err != nil {
		return nil, err
	}

	rec := &Record{
		Provider:       ProviderOpenLibrary,
		ProviderBookID: id,
		Title:          optString(work.Title),
		Subtitle:       optString(work.Subtitle),
		Description:    optString(workDescription(work.Description)),
		Categories:     work.Subjects,
	}

	if len(work.Covers) > 0 && work.Covers[0] > 0 {
		thumb := fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", work.Covers[0])
		rec.ThumbnailURL = &thumb
	}

	// Author references have to be resolved one by one. A missing author is
	// not worth failing the whole detail fetch over.
	for _, ref := range work.Authors {
		key := strings.TrimPrefix(ref.Author.Key, "/authors/")
		if key == "" || key == ref.Author.Key {
			continue
		}
		var author openLibraryAuthor
		if err := p.http.getJSON(ctx, fmt.Sprintf("%s/authors/%s.json", p.base, url.PathEscape(key)), &author); err != nil {
			continue
		}
		if author.Name != "" {
			rec.Authors = append(rec.Authors, author.Name)
		}
	}

	return rec, nil
}

// workDescription unpacks Open Library's two description shapes: a bare string
// or a typed {"value": ...} object.
func workDescription(v interface{}) string {
	switch d := v.(type) {
	case string:
		return d
	case map[string]interface{}:
		if s, ok := d["value"].(string); ok {
			return s
		}
	}
	return ""
}
