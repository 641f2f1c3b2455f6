package books

type ListBooksQuery struct {
	Limit     int  `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset    int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
	LibraryID *int `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
}

// UpdateLockPayload toggles one field lock, or the lock covering every field
// when All is set.
type UpdateLockPayload struct {
	Field  *string `json:"field,omitempty" validate:"required_without=All,omitempty,min=1,max=50"`
	All    *bool   `json:"all,omitempty"`
	Locked bool    `json:"locked"`
}
