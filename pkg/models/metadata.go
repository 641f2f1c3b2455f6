package models

import (
	"time"

	"github.com/folioreads/folio/pkg/metadata"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

// Metadata is a book's authoritative descriptive record plus its per-field
// lock state. Value columns mirror metadata.Record; list fields are stored as
// JSON text. Lock columns are deliberately separate from value columns so a
// refresh can rewrite every value without ever touching a lock.
type Metadata struct {
	bun.BaseModel `bun:"table:book_metadata,alias:bm"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",nullzero" json:"book_id"`

	Title          *string    `json:"title"`
	Subtitle       *string    `json:"subtitle"`
	Publisher      *string    `json:"publisher"`
	PublishedDate  *time.Time `json:"published_date"`
	Description    *string    `json:"description"`
	SeriesName     *string    `json:"series_name"`
	SeriesNumber   *int       `json:"series_number"`
	SeriesTotal    *int       `json:"series_total"`
	ISBN13         *string    `bun:"isbn13" json:"isbn13"`
	ISBN10         *string    `bun:"isbn10" json:"isbn10"`
	PageCount      *int       `json:"page_count"`
	Language       *string    `json:"language"`
	Rating         *float64   `json:"rating"`
	RatingCount    *int       `json:"rating_count"`
	ReviewCount    *int       `json:"review_count"`
	AuthorsJSON    string     `bun:"authors,nullzero" json:"-"`
	CategoriesJSON string     `bun:"categories,nullzero" json:"-"`
	Authors        []string   `bun:"-" json:"authors"`
	Categories     []string   `bun:"-" json:"categories"`
	Provider       *string    `json:"provider"`
	ProviderBookID *string    `json:"provider_book_id"`
	ThumbnailURL   *string    `json:"thumbnail_url"`
	CoverUpdatedOn *time.Time `json:"cover_updated_on"`

	AllFieldsLocked     bool `json:"all_fields_locked"`
	TitleLocked         bool `json:"title_locked"`
	SubtitleLocked      bool `json:"subtitle_locked"`
	PublisherLocked     bool `json:"publisher_locked"`
	PublishedDateLocked bool `json:"published_date_locked"`
	DescriptionLocked   bool `json:"description_locked"`
	SeriesNameLocked    bool `json:"series_name_locked"`
	SeriesNumberLocked  bool `json:"series_number_locked"`
	SeriesTotalLocked   bool `json:"series_total_locked"`
	ISBN13Locked        bool `bun:"isbn13_locked" json:"isbn13_locked"`
	ISBN10Locked        bool `bun:"isbn10_locked" json:"isbn10_locked"`
	PageCountLocked     bool `json:"page_count_locked"`
	LanguageLocked      bool `json:"language_locked"`
	RatingLocked        bool `json:"rating_locked"`
	ReviewCountLocked   bool `json:"review_count_locked"`
	CoverLocked         bool `json:"cover_locked"`
	AuthorsLocked       bool `json:"authors_locked"`
	CategoriesLocked    bool `json:"categories_locked"`
}

// MetadataValueColumns are the columns a refresh is allowed to rewrite. Lock
// columns and timestamps are excluded on purpose.
var MetadataValueColumns = []string{
	"title", "subtitle", "publisher", "published_date", "description",
	"series_name", "series_number", "series_total", "isbn13", "isbn10",
	"page_count", "language", "rating", "rating_count", "review_count",
	"authors", "categories", "provider", "provider_book_id", "thumbnail_url",
	"cover_updated_on", "updated_at",
}

// lockColumns maps lockable field names to their columns.
var lockColumns = map[string]string{
	metadata.FieldTitle:         "title_locked",
	metadata.FieldSubtitle:      "subtitle_locked",
	metadata.FieldPublisher:     "publisher_locked",
	metadata.FieldPublishedDate: "published_date_locked",
	metadata.FieldDescription:   "description_locked",
	metadata.FieldSeriesName:    "series_name_locked",
	metadata.FieldSeriesNumber:  "series_number_locked",
	metadata.FieldSeriesTotal:   "series_total_locked",
	metadata.FieldISBN13:        "isbn13_locked",
	metadata.FieldISBN10:        "isbn10_locked",
	metadata.FieldPageCount:     "page_count_locked",
	metadata.FieldLanguage:      "language_locked",
	metadata.FieldRating:        "rating_locked",
	metadata.FieldReviewCount:   "review_count_locked",
	metadata.FieldCover:         "cover_locked",
	metadata.FieldAuthors:       "authors_locked",
	metadata.FieldCategories:    "categories_locked",
}

// LockColumn returns the column backing the given lockable field name, or ""
// when the name is unknown.
func LockColumn(field string) string {
	return lockColumns[field]
}

func (m *Metadata) lockFlag(field string) *bool {
	switch field {
	case metadata.FieldTitle:
		return &m.TitleLocked
	case metadata.FieldSubtitle:
		return &m.SubtitleLocked
	case metadata.FieldPublisher:
		return &m.PublisherLocked
	case metadata.FieldPublishedDate:
		return &m.PublishedDateLocked
	case metadata.FieldDescription:
		return &m.DescriptionLocked
	case metadata.FieldSeriesName:
		return &m.SeriesNameLocked
	case metadata.FieldSeriesNumber:
		return &m.SeriesNumberLocked
	case metadata.FieldSeriesTotal:
		return &m.SeriesTotalLocked
	case metadata.FieldISBN13:
		return &m.ISBN13Locked
	case metadata.FieldISBN10:
		return &m.ISBN10Locked
	case metadata.FieldPageCount:
		return &m.PageCountLocked
	case metadata.FieldLanguage:
		return &m.LanguageLocked
	case metadata.FieldRating:
		return &m.RatingLocked
	case metadata.FieldReviewCount:
		return &m.ReviewCountLocked
	case metadata.FieldCover:
		return &m.CoverLocked
	case metadata.FieldAuthors:
		return &m.AuthorsLocked
	case metadata.FieldCategories:
		return &m.CategoriesLocked
	}
	return nil
}

// SetLock flips a single field lock. Unknown field names are an error so a
// typo can't silently leave a field unlocked.
func (m *Metadata) SetLock(field string, locked bool) error {
	flag := m.lockFlag(field)
	if flag == nil {
		return errors.Errorf("unknown lockable field %q", field)
	}
	*flag = locked
	return nil
}

// Locks materializes the lock columns into the merge engine's lock state.
func (m *Metadata) Locks() metadata.FieldLocks {
	fields := make(map[string]bool, len(metadata.FieldNames))
	for _, f := range metadata.FieldNames {
		if flag := m.lockFlag(f); flag != nil && *flag {
			fields[f] = true
		}
	}
	return metadata.FieldLocks{All: m.AllFieldsLocked, Fields: fields}
}

// Record materializes the value columns into a metadata record. UnmarshalLists
// must have run first (the services do this on every read).
func (m *Metadata) Record() metadata.Record {
	rec := metadata.Record{
		Title:          m.Title,
		Subtitle:       m.Subtitle,
		Publisher:      m.Publisher,
		PublishedDate:  m.PublishedDate,
		Description:    m.Description,
		SeriesName:     m.SeriesName,
		SeriesNumber:   m.SeriesNumber,
		SeriesTotal:    m.SeriesTotal,
		ISBN13:         m.ISBN13,
		ISBN10:         m.ISBN10,
		PageCount:      m.PageCount,
		Language:       m.Language,
		Rating:         m.Rating,
		RatingCount:    m.RatingCount,
		ReviewCount:    m.ReviewCount,
		Authors:        m.Authors,
		Categories:     m.Categories,
		ThumbnailURL:   m.ThumbnailURL,
		CoverUpdatedOn: m.CoverUpdatedOn,
	}
	if m.Provider != nil {
		rec.Provider = *m.Provider
	}
	if m.ProviderBookID != nil {
		rec.ProviderBookID = *m.ProviderBookID
	}
	return rec
}

// SetRecord copies a merge result back into the value columns.
func (m *Metadata) SetRecord(rec metadata.Record) error {
	m.Title = rec.Title
	m.Subtitle = rec.Subtitle
	m.Publisher = rec.Publisher
	m.PublishedDate = rec.PublishedDate
	m.Description = rec.Description
	m.SeriesName = rec.SeriesName
	m.SeriesNumber = rec.SeriesNumber
	m.SeriesTotal = rec.SeriesTotal
	m.ISBN13 = rec.ISBN13
	m.ISBN10 = rec.ISBN10
	m.PageCount = rec.PageCount
	m.Language = rec.Language
	m.Rating = rec.Rating
	m.RatingCount = rec.RatingCount
	m.ReviewCount = rec.ReviewCount
	m.Authors = rec.Authors
	m.Categories = rec.Categories
	m.ThumbnailURL = rec.ThumbnailURL
	m.CoverUpdatedOn = rec.CoverUpdatedOn
	m.Provider = nil
	if rec.Provider != "" {
		m.Provider = &rec.Provider
	}
	m.ProviderBookID = nil
	if rec.ProviderBookID != "" {
		m.ProviderBookID = &rec.ProviderBookID
	}
	return m.MarshalLists()
}

// MarshalLists serializes the list fields into their JSON columns. Empty lists
// collapse to NULL via nullzero.
func (m *Metadata) MarshalLists() error {
	m.AuthorsJSON = ""
	if len(m.Authors) > 0 {
		b, err := json.Marshal(m.Authors)
		if err != nil {
			return errors.WithStack(err)
		}
		m.AuthorsJSON = string(b)
	}
	m.CategoriesJSON = ""
	if len(m.Categories) > 0 {
		b, err := json.Marshal(m.Categories)
		if err != nil {
			return errors.WithStack(err)
		}
		m.CategoriesJSON = string(b)
	}
	return nil
}

// UnmarshalLists populates the list fields from their JSON columns.
func (m *Metadata) UnmarshalLists() error {
	m.Authors = nil
	if m.AuthorsJSON != "" {
		if err := json.Unmarshal([]byte(m.AuthorsJSON), &m.Authors); err != nil {
			return errors.WithStack(err)
		}
	}
	m.Categories = nil
	if m.CategoriesJSON != "" {
		if err := json.Unmarshal([]byte(m.CategoriesJSON), &m.Categories); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
