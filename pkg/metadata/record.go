package metadata

import "time"

// Provider names, in declaration order. The order matters: the orchestrator's
// round-robin interleave visits providers in this order.
const (
	ProviderGoogleBooks = "googlebooks"
	ProviderOpenLibrary = "openlibrary"
	ProviderGoodreads   = "goodreads"
)

// ProviderNames lists every known provider in declaration order.
var ProviderNames = []string{ProviderGoogleBooks, ProviderOpenLibrary, ProviderGoodreads}

// Lockable field names. FieldRating also governs the rating count, since a
// rating without its sample size is meaningless.
const (
	FieldTitle         = "title"
	FieldSubtitle      = "subtitle"
	FieldPublisher     = "publisher"
	FieldPublishedDate = "published_date"
	FieldDescription   = "description"
	FieldSeriesName    = "series_name"
	FieldSeriesNumber  = "series_number"
	FieldSeriesTotal   = "series_total"
	FieldISBN13        = "isbn13"
	FieldISBN10        = "isbn10"
	FieldPageCount     = "page_count"
	FieldLanguage      = "language"
	FieldRating        = "rating"
	FieldReviewCount   = "review_count"
	FieldCover         = "cover"
	FieldAuthors       = "authors"
	FieldCategories    = "categories"
)

// FieldNames lists every lockable field.
var FieldNames = []string{
	FieldTitle, FieldSubtitle, FieldPublisher, FieldPublishedDate,
	FieldDescription, FieldSeriesName, FieldSeriesNumber, FieldSeriesTotal,
	FieldISBN13, FieldISBN10, FieldPageCount, FieldLanguage, FieldRating,
	FieldReviewCount, FieldCover, FieldAuthors, FieldCategories,
}

// KnownField reports whether name is a lockable field name.
func KnownField(name string) bool {
	for _, f := range FieldNames {
		if f == name {
			return true
		}
	}
	return false
}

// Record is a book's descriptive metadata. Providers produce candidate
// records; the catalog stores one authoritative record per book, which is only
// ever replaced wholesale by merge output. Optional attributes are pointers so
// that "the provider said nothing" is distinguishable from a zero value.
type Record struct {
	Title          *string    `json:"title"`
	Subtitle       *string    `json:"subtitle"`
	Publisher      *string    `json:"publisher"`
	PublishedDate  *time.Time `json:"published_date"`
	Description    *string    `json:"description"`
	SeriesName     *string    `json:"series_name"`
	SeriesNumber   *int       `json:"series_number"`
	SeriesTotal    *int       `json:"series_total"`
	ISBN13         *string    `json:"isbn13"`
	ISBN10         *string    `json:"isbn10"`
	PageCount      *int       `json:"page_count"`
	Language       *string    `json:"language"`
	Rating         *float64   `json:"rating"`
	RatingCount    *int       `json:"rating_count"`
	ReviewCount    *int       `json:"review_count"`
	Authors        []string   `json:"authors"`
	Categories     []string   `json:"categories"`
	CoverUpdatedOn *time.Time `json:"cover_updated_on"`

	// Provenance.
	Provider       string  `json:"provider"`
	ProviderBookID string  `json:"provider_book_id"`
	ThumbnailURL   *string `json:"thumbnail_url"`
}

// FieldLocks is a book's per-field lock state. A locked field is never
// overwritten by a metadata refresh. All overrides every individual flag.
type FieldLocks struct {
	All    bool
	Fields map[string]bool
}

// IsLocked reports whether the given field may not be overwritten.
func (l FieldLocks) IsLocked(field string) bool {
	return l.All || l.Fields[field]
}
