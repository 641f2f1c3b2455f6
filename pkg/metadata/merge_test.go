package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string      { return &s }
func intPtr(i int) *int            { return &i }
func floatPtr(f float64) *float64  { return &f }
func timePtr(t time.Time) *time.Time { return &t }

func TestMergeUnlockedFieldsTakeIncoming(t *testing.T) {
	existing := Record{
		Title:       strPtr("Old Title"),
		Description: strPtr("Old description"),
		PageCount:   intPtr(100),
	}
	incoming := Record{
		Title:          strPtr("New Title"),
		Description:    strPtr("New description"),
		PageCount:      intPtr(350),
		Provider:       ProviderGoogleBooks,
		ProviderBookID: "abc123",
	}

	out, replaceCover := Merge(existing, incoming, FieldLocks{}, false)

	assert.Equal(t, "New Title", *out.Title)
	assert.Equal(t, "New description", *out.Description)
	assert.Equal(t, 350, *out.PageCount)
	assert.Equal(t, ProviderGoogleBooks, out.Provider)
	assert.Equal(t, "abc123", out.ProviderBookID)
	assert.False(t, replaceCover)
}

func TestMergeLockedFieldKeepsExisting(t *testing.T) {
	existing := Record{Title: strPtr("Curated Title"), Subtitle: strPtr("Curated Subtitle")}
	incoming := Record{Title: strPtr("Provider Title"), Subtitle: strPtr("Provider Subtitle")}
	locks := FieldLocks{Fields: map[string]bool{FieldTitle: true}}

	out, _ := Merge(existing, incoming, locks, false)

	assert.Equal(t, "Curated Title", *out.Title)
	assert.Equal(t, "Provider Subtitle", *out.Subtitle)
}

func TestMergeUnlockedNilIncomingClearsValue(t *testing.T) {
	// An unlocked field means the provider is authoritative, even when the
	// provider said nothing.
	existing := Record{Publisher: strPtr("Old House")}
	incoming := Record{}

	out, _ := Merge(existing, incoming, FieldLocks{}, false)

	assert.Nil(t, out.Publisher)
}

func TestMergeAllLockedKeepsEverything(t *testing.T) {
	published := time.Date(2001, 5, 1, 0, 0, 0, 0, time.UTC)
	existing := Record{
		Title:          strPtr("Kept"),
		Authors:        []string{"A. Uthor"},
		PublishedDate:  timePtr(published),
		Rating:         floatPtr(4.5),
		Provider:       ProviderOpenLibrary,
		ProviderBookID: "OL1W",
	}
	incoming := Record{
		Title:          strPtr("Dropped"),
		Authors:        []string{"Someone Else"},
		Rating:         floatPtr(1.0),
		Provider:       ProviderGoodreads,
		ProviderBookID: "42",
	}

	out, replaceCover := Merge(existing, incoming, FieldLocks{All: true}, true)

	assert.Equal(t, existing, out)
	assert.False(t, replaceCover)
}

func TestMergeListsReplacedWholesale(t *testing.T) {
	existing := Record{
		Authors:    []string{"First Author", "Second Author"},
		Categories: []string{"Fiction"},
	}
	incoming := Record{Authors: []string{"Third Author"}}

	out, _ := Merge(existing, incoming, FieldLocks{}, false)

	assert.Equal(t, []string{"Third Author"}, out.Authors)
	assert.Nil(t, out.Categories)
}

func TestMergeLockedListsKept(t *testing.T) {
	existing := Record{Authors: []string{"Kept Author"}}
	incoming := Record{Authors: []string{"New Author"}}
	locks := FieldLocks{Fields: map[string]bool{FieldAuthors: true}}

	out, _ := Merge(existing, incoming, locks, false)

	assert.Equal(t, []string{"Kept Author"}, out.Authors)
}

func TestMergeRatingLockCoversRatingCount(t *testing.T) {
	existing := Record{Rating: floatPtr(4.2), RatingCount: intPtr(900)}
	incoming := Record{Rating: floatPtr(3.1), RatingCount: intPtr(12)}
	locks := FieldLocks{Fields: map[string]bool{FieldRating: true}}

	out, _ := Merge(existing, incoming, locks, false)

	assert.Equal(t, 4.2, *out.Rating)
	assert.Equal(t, 900, *out.RatingCount)
}

func TestMergeCoverReplacement(t *testing.T) {
	existing := Record{}
	incoming := Record{ThumbnailURL: strPtr("https://example.com/cover.jpg")}

	_, replace := Merge(existing, incoming, FieldLocks{}, true)
	assert.True(t, replace)

	locks := FieldLocks{Fields: map[string]bool{FieldCover: true}}
	_, replace = Merge(existing, incoming, locks, true)
	assert.False(t, replace)

	_, replace = Merge(existing, incoming, FieldLocks{}, false)
	assert.False(t, replace)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := Record{Authors: []string{"Original"}}
	incoming := Record{Authors: []string{"Incoming"}}

	out, _ := Merge(existing, incoming, FieldLocks{}, false)
	out.Authors[0] = "Mutated"

	assert.Equal(t, "Original", existing.Authors[0])
	assert.Equal(t, "Incoming", incoming.Authors[0])
}

func TestMergeCoverUpdatedOnPreserved(t *testing.T) {
	stamped := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	existing := Record{CoverUpdatedOn: timePtr(stamped)}
	incoming := Record{}

	out, _ := Merge(existing, incoming, FieldLocks{}, false)

	assert.Equal(t, stamped, *out.CoverUpdatedOn)
}
