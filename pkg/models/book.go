package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	FileTypePDF  = "pdf"
	FileTypeEPUB = "epub"
)

// Book is one cataloged e-book file. The file path is unique per library; the
// descriptive metadata lives in the related Metadata row and is only ever
// replaced wholesale by merge output.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LibraryID     int       `bun:",nullzero" json:"library_id"`
	Library       *Library  `bun:"rel:belongs-to" json:"library,omitempty"`
	Filepath      string    `bun:",nullzero" json:"filepath"`
	FileName      string    `bun:",nullzero" json:"file_name"`
	FileType      string    `bun:",nullzero" json:"file_type"`
	FilesizeBytes int64     `json:"filesize_bytes"`
	Metadata      *Metadata `bun:"rel:has-one,join:id=book_id" json:"metadata,omitempty"`
}
