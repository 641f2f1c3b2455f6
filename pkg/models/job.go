package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

const (
	JobTypeMetadataRefresh = "metadata_refresh"
	JobTypeLibraryScan     = "library_scan"
	JobTypeLibraryRefresh  = "library_refresh"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID         int         `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Type       string      `bun:",nullzero" json:"type"`
	Status     string      `bun:",nullzero" json:"status"`
	Data       string      `bun:",nullzero" json:"-"`
	DataParsed interface{} `bun:"-" json:"data"`
	Error      *string     `json:"error,omitempty"`
	LibraryID  *int        `json:"library_id,omitempty"`
}

func (job *Job) MarshalData() error {
	data, err := json.Marshal(job.DataParsed)
	if err != nil {
		return errors.WithStack(err)
	}
	job.Data = string(data)
	return nil
}

func (job *Job) UnmarshalData() error {
	switch job.Type {
	case JobTypeMetadataRefresh:
		job.DataParsed = &JobRefreshData{}
	case JobTypeLibraryScan, JobTypeLibraryRefresh:
		job.DataParsed = &JobScanData{}
	}

	err := json.Unmarshal([]byte(job.Data), job.DataParsed)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// JobRefreshData is the payload of a metadata refresh job. Either BookIDs or
// LibraryID scopes the job; Provider selects the single provider consulted per
// book.
type JobRefreshData struct {
	BookIDs      []int  `json:"book_ids,omitempty"`
	LibraryID    *int   `json:"library_id,omitempty"`
	Provider     string `json:"provider"`
	ReplaceCover bool   `json:"replace_cover"`
}

type JobScanData struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}
