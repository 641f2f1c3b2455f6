package jobs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/folioreads/folio/pkg/migrations"
	"github.com/folioreads/folio/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createJob(t *testing.T, svc *Service, jobType, status string, data interface{}) *models.Job {
	t.Helper()

	job := &models.Job{
		Type:       jobType,
		Status:     status,
		DataParsed: data,
	}
	require.NoError(t, svc.CreateJob(context.Background(), job))
	return job
}

func TestCreateJobMarshalsData(t *testing.T) {
	svc := NewService(newTestDB(t))

	libID := 7
	job := createJob(t, svc, models.JobTypeMetadataRefresh, models.JobStatusQueued, &models.JobRefreshData{
		LibraryID: &libID,
		Provider:  "openlibrary",
	})

	assert.NotZero(t, job.ID)
	assert.NotEmpty(t, job.Data)
	assert.False(t, job.CreatedAt.IsZero())

	got, err := svc.RetrieveJob(context.Background(), RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)

	data, ok := got.DataParsed.(*models.JobRefreshData)
	require.True(t, ok)
	require.NotNil(t, data.LibraryID)
	assert.Equal(t, 7, *data.LibraryID)
	assert.Equal(t, "openlibrary", data.Provider)
}

func TestRetrieveJobNotFound(t *testing.T) {
	svc := NewService(newTestDB(t))

	missing := 999
	_, err := svc.RetrieveJob(context.Background(), RetrieveJobOptions{ID: &missing})
	assert.EqualError(t, err, "Job not found.")
}

func TestListJobsFilters(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	createJob(t, svc, models.JobTypeMetadataRefresh, models.JobStatusQueued, &models.JobRefreshData{Provider: "goodreads"})
	createJob(t, svc, models.JobTypeMetadataRefresh, models.JobStatusCompleted, &models.JobRefreshData{Provider: "goodreads"})
	createJob(t, svc, models.JobTypeLibraryScan, models.JobStatusCompleted, &models.JobScanData{Added: 2})

	byType, err := svc.ListJobs(ctx, ListJobsOptions{Types: []string{models.JobTypeLibraryScan}})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, models.JobTypeLibraryScan, byType[0].Type)

	byStatus, err := svc.ListJobs(ctx, ListJobsOptions{Statuses: []string{models.JobStatusCompleted}})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	both, err := svc.ListJobs(ctx, ListJobsOptions{
		Types:    []string{models.JobTypeMetadataRefresh},
		Statuses: []string{models.JobStatusCompleted},
	})
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestListJobsPagination(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createJob(t, svc, models.JobTypeLibraryScan, models.JobStatusCompleted, &models.JobScanData{})
	}

	limit := 2
	offset := 2
	page, total, err := svc.ListJobsWithTotal(ctx, ListJobsOptions{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)
}

func TestUpdateJobOnlyTouchesNamedColumns(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	job := createJob(t, svc, models.JobTypeMetadataRefresh, models.JobStatusRunning, &models.JobRefreshData{Provider: "googlebooks"})

	msg := "provider meltdown"
	job.Status = models.JobStatusFailed
	job.Error = &msg
	job.Type = "should_not_be_written"
	require.NoError(t, svc.UpdateJob(ctx, job, UpdateJobOptions{Columns: []string{"status", "error"}}))

	got, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "provider meltdown", *got.Error)
	assert.Equal(t, models.JobTypeMetadataRefresh, got.Type)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestUpdateJobNoColumnsIsNoop(t *testing.T) {
	svc := NewService(newTestDB(t))

	job := createJob(t, svc, models.JobTypeLibraryScan, models.JobStatusRunning, &models.JobScanData{})
	job.Status = models.JobStatusCompleted
	require.NoError(t, svc.UpdateJob(context.Background(), job, UpdateJobOptions{}))

	got, err := svc.RetrieveJob(context.Background(), RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, got.Status)
}
