package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const googleBooksBaseURL = "https://www.googleapis.com/books/v1"

// googleBooks talks to the Google Books volumes API. Search and detail are
// both JSON endpoints, so this is the most reliable of the providers.
type googleBooks struct {
	base string
	http *httpClient
}

// NewGoogleBooks returns the Google Books provider.
func NewGoogleBooks() Provider {
	return &googleBooks{base: googleBooksBaseURL, http: newHTTPClient()}
}

func (p *googleBooks) Name() string {
	return ProviderGoogleBooks
}

type googleVolumeList struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

type googleVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Subtitle            string   `json:"subtitle"`
		Authors             []string `json:"authors"`
		Publisher           string   `json:"publisher"`
		PublishedDate       string   `json:"publishedDate"`
		Description         string   `json:"description"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		PageCount     int      `json:"pageCount"`
		Categories    []string `json:"categories"`
		AverageRating float64  `json:"averageRating"`
		RatingsCount  int      `json:"ratingsCount"`
		Language      string   `json:"language"`
		ImageLinks    struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

func (p *googleBooks) Search(ctx context.Context, q Query) ([]string, error) {
	terms, err := BuildSearchTerms(q)
	if err != nil {
		return nil, err
	}

	var parts []string
	if terms.ISBN != "" {
		parts = append(parts, "isbn:"+terms.ISBN)
	} else {
		parts = append(parts, "intitle:"+terms.Title)
	}
	if terms.Author != "" {
		parts = append(parts, "inauthor:"+terms.Author)
	}

	searchURL := fmt.Sprintf("%s/volumes?q=%s", p.base, url.QueryEscape(strings.Join(parts, " ")))

	var list googleVolumeList
	if err := p.http.getJSON(ctx, searchURL, &list); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

func (p *googleBooks) FetchDetail(ctx context.Context, id string) (*Record, error) {
	var vol googleVolume
	if err := p.http.getJSON(ctx, fmt.Sprintf("%s/volumes/%s", p.base, url.PathEscape(id)), &vol); err != nil {
		return nil, err
	}

	info := vol.VolumeInfo
	rec := &Record{
		Provider:       ProviderGoogleBooks,
		ProviderBookID: id,
		Title:          optString(info.Title),
		Subtitle:       optString(info.Subtitle),
		Publisher:      optString(info.Publisher),
		PublishedDate:  parseFlexibleDate(info.PublishedDate),
		Description:    optString(info.Description),
		PageCount:      optInt(info.PageCount),
		Language:       optString(info.Language),
		Rating:         optFloat(info.AverageRating),
		RatingCount:    optInt(info.RatingsCount),
		Authors:        info.Authors,
		Categories:     info.Categories,
		ThumbnailURL:   optString(info.ImageLinks.Thumbnail),
	}

	for _, ident := range info.IndustryIdentifiers {
		switch ident.Type {
		case "ISBN_13":
			rec.ISBN13 = optString(ident.Identifier)
		case "ISBN_10":
			rec.ISBN10 = optString(ident.Identifier)
		}
	}

	return rec, nil
}

// parseFlexibleDate handles the partial dates providers return: a full date, a
// year-month, or a bare year.
func parseFlexibleDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func optFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
