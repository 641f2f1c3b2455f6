package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE libraries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				deleted_at TIMESTAMPTZ
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE library_paths (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				filepath TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_library_paths_library_id ON library_paths (library_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				filepath TEXT NOT NULL,
				file_name TEXT NOT NULL,
				file_type TEXT NOT NULL,
				filesize_bytes INTEGER NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_books_library_id_filepath ON books (library_id, filepath)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_books_library_id ON books (library_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE book_metadata (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id INTEGER REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				title TEXT,
				subtitle TEXT,
				publisher TEXT,
				published_date TIMESTAMPTZ,
				description TEXT,
				series_name TEXT,
				series_number INTEGER,
				series_total INTEGER,
				isbn13 TEXT,
				isbn10 TEXT,
				page_count INTEGER,
				language TEXT,
				rating REAL,
				rating_count INTEGER,
				review_count INTEGER,
				authors TEXT,
				categories TEXT,
				provider TEXT,
				provider_book_id TEXT,
				thumbnail_url TEXT,
				cover_updated_on TIMESTAMPTZ,
				all_fields_locked BOOLEAN NOT NULL DEFAULT FALSE,
				title_locked BOOLEAN NOT NULL DEFAULT FALSE,
				subtitle_locked BOOLEAN NOT NULL DEFAULT FALSE,
				publisher_locked BOOLEAN NOT NULL DEFAULT FALSE,
				published_date_locked BOOLEAN NOT NULL DEFAULT FALSE,
				description_locked BOOLEAN NOT NULL DEFAULT FALSE,
				series_name_locked BOOLEAN NOT NULL DEFAULT FALSE,
				series_number_locked BOOLEAN NOT NULL DEFAULT FALSE,
				series_total_locked BOOLEAN NOT NULL DEFAULT FALSE,
				isbn13_locked BOOLEAN NOT NULL DEFAULT FALSE,
				isbn10_locked BOOLEAN NOT NULL DEFAULT FALSE,
				page_count_locked BOOLEAN NOT NULL DEFAULT FALSE,
				language_locked BOOLEAN NOT NULL DEFAULT FALSE,
				rating_locked BOOLEAN NOT NULL DEFAULT FALSE,
				review_count_locked BOOLEAN NOT NULL DEFAULT FALSE,
				cover_locked BOOLEAN NOT NULL DEFAULT FALSE,
				authors_locked BOOLEAN NOT NULL DEFAULT FALSE,
				categories_locked BOOLEAN NOT NULL DEFAULT FALSE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_book_metadata_book_id ON book_metadata (book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE jobs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				type TEXT NOT NULL,
				status TEXT NOT NULL,
				data TEXT NOT NULL,
				error TEXT,
				library_id INTEGER REFERENCES libraries (id)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_jobs_status ON jobs (status)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"jobs", "book_metadata", "books", "library_paths", "libraries"} {
			_, err := db.Exec(`DROP TABLE IF EXISTS ` + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
