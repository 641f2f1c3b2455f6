package libraries

type CreateLibraryPayload struct {
	Name         string   `json:"name" validate:"required,max=100"`
	LibraryPaths []string `json:"library_paths" validate:"required,min=1,max=50,dive,max=500"`
}

type ListLibrariesQuery struct {
	Limit   int  `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset  int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Deleted bool `query:"deleted" json:"deleted,omitempty"`
}
