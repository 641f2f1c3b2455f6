package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openLibrarySearchFixture = `{
	"docs": [
		{"key": "/works/OL45883W", "title": "The Left Hand of Darkness", "author_name": ["Ursula K. Le Guin"], "first_publish_year": 1969},
		{"key": "/works/OL123W", "title": "Another Edition"}
	]
}`

const openLibraryWorkFixture = `{
	"title": "The Left Hand of Darkness",
	"description": {"type": "/type/text", "value": "On the planet Winter, gender is mutable."},
	"subjects": ["Science fiction", "Androgyny"],
	"covers": [240727],
	"authors": [
		{"author": {"key": "/authors/OL26320A"}},
		{"author": {"key": "/authors/OL9999999A"}}
	]
}`

func newOpenLibraryTestServer(t *testing.T) *openLibrary {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search.json":
			_, _ = w.Write([]byte(openLibrarySearchFixture))
		case "/works/OL45883W.json":
			_, _ = w.Write([]byte(openLibraryWorkFixture))
		case "/authors/OL26320A.json":
			_, _ = w.Write([]byte(`{"name": "Ursula K. Le Guin"}`))
		default:
			// The second author reference resolves to nothing; the detail
			// fetch must survive that.
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	return &openLibrary{base: srv.URL, http: newHTTPClient()}
}

func TestOpenLibrarySearch(t *testing.T) {
	p := newOpenLibraryTestServer(t)

	ids, err := p.Search(context.Background(), Query{Title: "The Left Hand of Darkness"})
	require.NoError(t, err)
	assert.Equal(t, []string{"OL45883W", "OL123W"}, ids)
}

func TestOpenLibraryFetchDetail(t *testing.T) {
	p := newOpenLibraryTestServer(t)

	rec, err := p.FetchDetail(context.Background(), "OL45883W")
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenLibrary, rec.Provider)
	assert.Equal(t, "OL45883W", rec.ProviderBookID)
	assert.Equal(t, "The Left Hand of Darkness", *rec.Title)
	assert.Equal(t, "On the planet Winter, gender is mutable.", *rec.Description)
	assert.Equal(t, []string{"Science fiction", "Androgyny"}, rec.Categories)
	assert.Equal(t, []string{"Ursula K. Le Guin"}, rec.Authors)
	require.NotNil(t, rec.ThumbnailURL)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/240727-L.jpg", *rec.ThumbnailURL)
	assert.Nil(t, rec.PageCount)
	assert.Nil(t, rec.Rating)
}

func TestWorkDescription(t *testing.T) {
	assert.Equal(t, "plain", workDescription("plain"))
	assert.Equal(t, "typed", workDescription(map[string]interface{}{"value": "typed"}))
	assert.Empty(t, workDescription(nil))
	assert.Empty(t, workDescription(42))
}
