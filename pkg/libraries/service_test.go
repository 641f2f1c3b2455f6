package libraries

import (
	"context"
	"database/sql"
	"testing"
	"time"

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

func TestCreateLibraryWithPaths(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	library := &models.Library{
		Name: "Fiction",
		LibraryPaths: []*models.LibraryPath{
			{Filepath: "/media/books/fiction"},
			{Filepath: "/media/books/anthologies"},
		},
	}
	require.NoError(t, svc.CreateLibrary(ctx, library))
	assert.NotZero(t, library.ID)

	got, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID})
	require.NoError(t, err)
	assert.Equal(t, "Fiction", got.Name)
	require.Len(t, got.LibraryPaths, 2)
	// Paths come back sorted.
	assert.Equal(t, "/media/books/anthologies", got.LibraryPaths[0].Filepath)
	assert.Equal(t, library.ID, got.LibraryPaths[0].LibraryID)
}

func TestRetrieveLibraryNotFound(t *testing.T) {
	svc := NewService(newTestDB(t))

	missing := 999
	_, err := svc.RetrieveLibrary(context.Background(), RetrieveLibraryOptions{ID: &missing})
	assert.EqualError(t, err, "Library not found.")
}

func TestListLibrariesExcludesDeleted(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.CreateLibrary(ctx, &models.Library{Name: "Active"}))

	deleted := &models.Library{Name: "Retired"}
	require.NoError(t, svc.CreateLibrary(ctx, deleted))
	now := time.Now()
	deleted.DeletedAt = &now
	_, err := db.NewUpdate().Model(deleted).Column("deleted_at").WherePK().Exec(ctx)
	require.NoError(t, err)

	list, err := svc.ListLibraries(ctx, ListLibrariesOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Active", list[0].Name)

	all, total, err := svc.ListLibrariesWithTotal(ctx, ListLibrariesOptions{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)
}
