package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS designs (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// SQLiteStore stores designs in an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path
// and ensures the schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to open database")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to initialize schema")
	}
	return &SQLiteStore{db: db}, nil
}

// Put upserts a design.
func (s *SQLiteStore) Put(ctx context.Context, d *design.Design) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO designs (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		d.Name, data, time.Now().UTC())
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to store design %q", d.Name)
	}
	return nil
}

// Get retrieves a design by name.
func (s *SQLiteStore) Get(ctx context.Context, name string) (*design.Design, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM designs WHERE name = ?`, name).Scan(&data)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeDesignNotFound, "design %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to load design %q", name)
	}
	return decode(name, data)
}

// List returns the stored design names in sorted order.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM designs ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to list designs")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to scan design name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to list designs")
	}
	return names, nil
}

// Delete removes a design. Deleting a missing design is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM designs WHERE name = ?`, name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to delete design %q", name)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
