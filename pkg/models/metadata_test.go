package models

import (
	"testing"
	"time"

	"github.com/folioreads/folio/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataRecordRoundTrip(t *testing.T) {
	title := "The Dispossessed"
	rating := 4.26
	count := 120000
	published := time.Date(1974, 5, 1, 0, 0, 0, 0, time.UTC)

	rec := metadata.Record{
		Title:          &title,
		PublishedDate:  &published,
		Rating:         &rating,
		RatingCount:    &count,
		Authors:        []string{"Ursula K. Le Guin"},
		Categories:     []string{"Science Fiction"},
		Provider:       metadata.ProviderOpenLibrary,
		ProviderBookID: "OL123W",
	}

	md := &Metadata{}
	require.NoError(t, md.SetRecord(rec))

	assert.Equal(t, `["Ursula K. Le Guin"]`, md.AuthorsJSON)
	require.NotNil(t, md.Provider)
	assert.Equal(t, metadata.ProviderOpenLibrary, *md.Provider)

	got := md.Record()
	assert.Equal(t, rec, got)
}

func TestMetadataSetRecordClearsStaleValues(t *testing.T) {
	old := "Old Title"
	md := &Metadata{
		Title:   &old,
		Authors: []string{"Old Author"},
	}
	require.NoError(t, md.MarshalLists())

	require.NoError(t, md.SetRecord(metadata.Record{}))

	assert.Nil(t, md.Title)
	assert.Empty(t, md.Authors)
	assert.Empty(t, md.AuthorsJSON)
	assert.Nil(t, md.Provider)
}

func TestMetadataLocks(t *testing.T) {
	md := &Metadata{
		TitleLocked:   true,
		AuthorsLocked: true,
	}

	locks := md.Locks()
	assert.False(t, locks.All)
	assert.True(t, locks.IsLocked(metadata.FieldTitle))
	assert.True(t, locks.IsLocked(metadata.FieldAuthors))
	assert.False(t, locks.IsLocked(metadata.FieldDescription))

	md.AllFieldsLocked = true
	locks = md.Locks()
	assert.True(t, locks.IsLocked(metadata.FieldDescription))
}

func TestMetadataSetLock(t *testing.T) {
	md := &Metadata{}

	require.NoError(t, md.SetLock(metadata.FieldCover, true))
	assert.True(t, md.CoverLocked)

	require.NoError(t, md.SetLock(metadata.FieldCover, false))
	assert.False(t, md.CoverLocked)

	err := md.SetLock("shoe_size", true)
	assert.EqualError(t, err, `unknown lockable field "shoe_size"`)
}

func TestMetadataListsCollapseToEmpty(t *testing.T) {
	md := &Metadata{Authors: []string{}, Categories: nil}
	require.NoError(t, md.MarshalLists())
	assert.Empty(t, md.AuthorsJSON)
	assert.Empty(t, md.CategoriesJSON)

	require.NoError(t, md.UnmarshalLists())
	assert.Nil(t, md.Authors)
	assert.Nil(t, md.Categories)
}

func TestMetadataUnmarshalListsBadJSON(t *testing.T) {
	md := &Metadata{AuthorsJSON: "{nope"}
	assert.Error(t, md.UnmarshalLists())
}
