package jobs

type ListJobsQuery struct {
	Limit    int      `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset   int      `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Types    []string `query:"types" json:"types,omitempty" validate:"omitempty,dive,oneof=metadata_refresh library_scan library_refresh"`
	Statuses []string `query:"statuses" json:"statuses,omitempty" validate:"omitempty,dive,oneof=queued running completed failed"`
}
