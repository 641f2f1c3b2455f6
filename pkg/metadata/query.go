package metadata

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// maxSearchTermWords caps how many words of a title end up in a search query.
// Long filenames and subtitle-laden titles hurt relevance on every provider.
const maxSearchTermWords = 8

// Query is the input to a provider search. It is built from the book's stored
// metadata plus its file name as a fallback.
type Query struct {
	ISBN     string
	Title    string
	Author   string
	FileName string
}

// SearchTerms is the normalized form of a Query that providers actually send:
// exactly one of ISBN or Title is the primary key, with Author only ever a
// secondary refinement.
type SearchTerms struct {
	ISBN   string
	Title  string
	Author string
}

// BuildSearchTerms applies the query construction rules: prefer the ISBN when
// present; otherwise use a cleaned, truncated title; otherwise derive a title
// from the file name. The author is appended only when a title or ISBN made it
// into the query. When none of the three inputs is usable it returns
// ErrMissingQueryInput, and the provider must not issue a request.
func BuildSearchTerms(q Query) (SearchTerms, error) {
	terms := SearchTerms{}

	if isbn := strings.TrimSpace(q.ISBN); isbn != "" {
		terms.ISBN = isbn
	}

	if title := cleanSearchTerm(q.Title); title != "" {
		terms.Title = title
	} else if fromFile := cleanSearchTerm(CleanFileName(q.FileName)); fromFile != "" {
		terms.Title = fromFile
	}

	if terms.ISBN == "" && terms.Title == "" {
		return SearchTerms{}, errors.WithStack(ErrMissingQueryInput)
	}

	if author := strings.TrimSpace(q.Author); author != "" {
		terms.Author = author
	}

	return terms, nil
}

var (
	bracketedRE  = regexp.MustCompile(`[([{].*?[)\]}]`)
	separatorsRE = regexp.MustCompile(`[_.\-]+`)
	nonSearchRE  = regexp.MustCompile(`[^\p{L}\p{N}' ]+`)
	spacesRE     = regexp.MustCompile(`\s{2,}`)
)

// CleanFileName turns an e-book file name into a plausible title: the
// extension, bracketed release junk, and separator characters are dropped.
func CleanFileName(name string) string {
	if name == "" {
		return ""
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = bracketedRE.ReplaceAllString(name, " ")
	name = separatorsRE.ReplaceAllString(name, " ")
	return strings.TrimSpace(spacesRE.ReplaceAllString(name, " "))
}

// cleanSearchTerm strips characters that confuse provider search engines and
// truncates to maxSearchTermWords words.
func cleanSearchTerm(term string) string {
	term = nonSearchRE.ReplaceAllString(term, " ")
	term = strings.TrimSpace(spacesRE.ReplaceAllString(term, " "))
	if term == "" {
		return ""
	}
	words := strings.Fields(term)
	if len(words) > maxSearchTermWords {
		words = words[:maxSearchTermWords]
	}
	return strings.Join(words, " ")
}
