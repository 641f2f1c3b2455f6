package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodreadsSearchFixture = `<html><body>
	<table>
		<tr><td><a class="bookTitle" href="/book/show/18423.The_Left_Hand_of_Darkness?from_search=true">The Left Hand of Darkness</a></td></tr>
		<tr><td><a class="bookTitle" href="/book/show/18423.The_Left_Hand_of_Darkness">Duplicate row</a></td></tr>
		<tr><td><a class="bookTitle" href="/book/show/92625.The_Dispossessed">The Dispossessed</a></td></tr>
		<tr><td><a class="otherLink" href="/book/show/555.Ignored">Ignored</a></td></tr>
	</table>
</body></html>`

const goodreadsDetailFixture = `<html><head>
	<script type="application/ld+json">{
		"name": "The Left Hand of Darkness",
		"image": "https://images.example.com/18423.jpg",
		"isbn": "9780441478125",
		"numberOfPages": 304,
		"inLanguage": "English",
		"author": [{"name": "Ursula K. Le Guin"}],
		"aggregateRating": {"ratingValue": 4.09, "ratingCount": 123456, "reviewCount": 7890}
	}</script>
</head><body>
	<div data-testid="description">A lone envoy visits a planet whose people have no fixed sex.</div>
	<a href="/series/123-hainish-cycle">Hainish Cycle #4</a>
	<a data-testid="genre" href="/genres/science-fiction">Science Fiction</a>
	<a data-testid="genre" href="/genres/classics">Classics</a>
</body></html>`

func newGoodreadsTestServer(t *testing.T) *goodreads {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			_, _ = w.Write([]byte(goodreadsSearchFixture))
		case "/book/show/18423":
			_, _ = w.Write([]byte(goodreadsDetailFixture))
		case "/book/show/99999":
			_, _ = w.Write([]byte(`<html><body>no structured data here</body></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	return &goodreads{base: srv.URL, http: newHTTPClient()}
}

func TestGoodreadsSearch(t *testing.T) {
	p := newGoodreadsTestServer(t)

	ids, err := p.Search(context.Background(), Query{Title: "The Left Hand of Darkness"})
	require.NoError(t, err)

	// Duplicate links collapse; non-book links are ignored.
	assert.Equal(t, []string{"18423", "92625"}, ids)
}

func TestGoodreadsFetchDetail(t *testing.T) {
	p := newGoodreadsTestServer(t)

	rec, err := p.FetchDetail(context.Background(), "18423")
	require.NoError(t, err)

	assert.Equal(t, ProviderGoodreads, rec.Provider)
	assert.Equal(t, "18423", rec.ProviderBookID)
	assert.Equal(t, "The Left Hand of Darkness", *rec.Title)
	assert.Equal(t, "9780441478125", *rec.ISBN13)
	assert.Nil(t, rec.ISBN10)
	assert.Equal(t, 304, *rec.PageCount)
	assert.Equal(t, "English", *rec.Language)
	assert.Equal(t, []string{"Ursula K. Le Guin"}, rec.Authors)
	assert.Equal(t, 4.09, *rec.Rating)
	assert.Equal(t, 123456, *rec.RatingCount)
	assert.Equal(t, 7890, *rec.ReviewCount)
	assert.Equal(t, "https://images.example.com/18423.jpg", *rec.ThumbnailURL)
	assert.Equal(t, "A lone envoy visits a planet whose people have no fixed sex.", *rec.Description)
	require.NotNil(t, rec.SeriesName)
	assert.Equal(t, "Hainish Cycle", *rec.SeriesName)
	require.NotNil(t, rec.SeriesNumber)
	assert.Equal(t, 4, *rec.SeriesNumber)
	assert.Equal(t, []string{"Science Fiction", "Classics"}, rec.Categories)
}

func TestGoodreadsFetchDetailMissingJSONLD(t *testing.T) {
	p := newGoodreadsTestServer(t)

	_, err := p.FetchDetail(context.Background(), "99999")
	assert.True(t, errors.Is(err, ErrProviderUnavailable))
}
