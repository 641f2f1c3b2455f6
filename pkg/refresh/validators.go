package refresh

type RefreshPayload struct {
	BookIDs      []int  `json:"book_ids,omitempty" validate:"omitempty,min=1,dive,min=1"`
	LibraryID    *int   `json:"library_id,omitempty" validate:"required_without=BookIDs,omitempty,min=1"`
	Provider     string `json:"provider" validate:"required,oneof=googlebooks openlibrary goodreads"`
	ReplaceCover bool   `json:"replace_cover"`
}

// CandidatesPayload asks the fan-out path for candidate records. Overrides
// replace the stored values when building provider queries.
type CandidatesPayload struct {
	Providers []string `json:"providers,omitempty" validate:"omitempty,dive,oneof=googlebooks openlibrary goodreads"`
	Title     *string  `json:"title,omitempty" validate:"omitempty,max=300"`
	Author    *string  `json:"author,omitempty" validate:"omitempty,max=200"`
	ISBN      *string  `json:"isbn,omitempty" validate:"omitempty,max=20"`
}
