package metadata

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchTermsPrefersISBN(t *testing.T) {
	terms, err := BuildSearchTerms(Query{
		ISBN:   "9780262033848",
		Title:  "Introduction to Algorithms",
		Author: "Cormen",
	})
	require.NoError(t, err)

	assert.Equal(t, "9780262033848", terms.ISBN)
	assert.Equal(t, "Introduction to Algorithms", terms.Title)
	assert.Equal(t, "Cormen", terms.Author)
}

func TestBuildSearchTermsTitleFallsBackToFileName(t *testing.T) {
	terms, err := BuildSearchTerms(Query{
		FileName: "The_Left.Hand-of_Darkness[retail].epub",
	})
	require.NoError(t, err)

	assert.Equal(t, "The Left Hand of Darkness", terms.Title)
	assert.Empty(t, terms.ISBN)
}

func TestBuildSearchTermsAuthorOnlyWithTitleOrISBN(t *testing.T) {
	// An author alone can't anchor a search.
	_, err := BuildSearchTerms(Query{Author: "Ursula K. Le Guin"})
	assert.True(t, errors.Is(err, ErrMissingQueryInput))
}

func TestBuildSearchTermsNoUsableInput(t *testing.T) {
	_, err := BuildSearchTerms(Query{})
	assert.True(t, errors.Is(err, ErrMissingQueryInput))

	_, err = BuildSearchTerms(Query{Title: "???", FileName: "!!!.pdf"})
	assert.True(t, errors.Is(err, ErrMissingQueryInput))
}

func TestBuildSearchTermsTruncatesLongTitles(t *testing.T) {
	terms, err := BuildSearchTerms(Query{
		Title: "one two three four five six seven eight nine ten",
	})
	require.NoError(t, err)

	assert.Equal(t, "one two three four five six seven eight", terms.Title)
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain", "Dune.epub", "Dune"},
		{"separators", "a_game-of.thrones.pdf", "a game of thrones"},
		{"bracketed junk", "Neuromancer (1984) [v2].epub", "Neuromancer"},
		{"empty", "", ""},
		{"extension only", ".epub", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, CleanFileName(test.in))
		})
	}
}
