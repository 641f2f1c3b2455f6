package htmlutil

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// tagPattern matches HTML tags including self-closing tags.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// multipleSpacesPattern matches multiple consecutive whitespace characters.
var multipleSpacesPattern = regexp.MustCompile(`\s{2,}`)

// blockTags are closing or void tags that typically create visual breaks.
var blockTags = []string{"</p>", "</div>", "<br>", "<br/>", "<br />", "</li>", "</h1>", "</h2>", "</h3>", "</h4>", "</h5>", "</h6>"}

// StripTags removes all HTML tags from a string and normalizes whitespace.
// Block-level tags (p, div, br, etc.) become newlines so paragraph structure
// survives. Provider detail pages return rich HTML descriptions; the catalog
// stores plain text.
func StripTags(s string) string {
	if s == "" {
		return ""
	}

	result := s
	for _, tag := range blockTags {
		result = strings.ReplaceAll(result, tag, "\n")
		result = strings.ReplaceAll(result, strings.ToUpper(tag), "\n")
	}

	result = tagPattern.ReplaceAllString(result, "")
	result = html.UnescapeString(result)

	// Collapse runs of spaces within each line but preserve the newlines the
	// block tags produced.
	lines := strings.Split(result, "\n")
	nonEmptyLines := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(multipleSpacesPattern.ReplaceAllString(line, " "))
		if line != "" {
			nonEmptyLines = append(nonEmptyLines, line)
		}
	}

	return strings.Join(nonEmptyLines, "\n")
}
