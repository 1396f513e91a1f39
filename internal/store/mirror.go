// internal/store/mirror.go
//
// Optional MySQL mirror of accepted submissions.
//
// Context
// -------
// Operators who want submissions queryable without parsing CSV can set
// `database.mirror_dsn`; each normalized record is then also inserted
// into a `form_submission` table.  The mirror is strictly best-effort:
// an insert failure is logged and counted, never surfaced to the
// caller, and never rolls back the CSV append.
//
// Schema
// ------
//
//	CREATE TABLE form_submission (
//	    id           BIGINT AUTO_INCREMENT PRIMARY KEY,
//	    form_id      VARCHAR(128)  NOT NULL DEFAULT '',
//	    submitted_at DATETIME      NOT NULL,
//	    data         JSON          NOT NULL
//	);

package store

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const mirrorInsert = `INSERT INTO form_submission (form_id, submitted_at, data) VALUES (?, ?, ?)`

// Mirror wraps a small sqlx pool for best-effort inserts.
type Mirror struct {
	db *sqlx.DB
}

// OpenMirror connects with conservative pool sizes and pings so callers
// fail fast during bootstrap.
func OpenMirror(dsn string) (*Mirror, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &Mirror{db: db}, nil
}

// NewMirrorFromDB wraps an existing handle; used by tests.
func NewMirrorFromDB(db *sqlx.DB) *Mirror { return &Mirror{db: db} }

// Insert records one submission.  dataJSON is the compact payload
// serialization already produced for the CSV row.
func (m *Mirror) Insert(ctx context.Context, formID string, submittedAt time.Time, dataJSON []byte) error {
	_, err := m.db.ExecContext(ctx, mirrorInsert, formID, submittedAt, dataJSON)
	return err
}

// Close releases the pool.
func (m *Mirror) Close() error { return m.db.Close() }
