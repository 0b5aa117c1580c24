// Package store provides persistence backends for designs.
//
// Designs are stored in their TOML form regardless of backend, so a design
// exported from one backend imports cleanly into another. Backends:
//
//   - DirStore: a directory of .toml files, for local work
//   - SQLiteStore: an embedded single-file database (cgo-free driver)
//   - MongoStore: a shared database for team deployments
package store

import (
	"bytes"
	"context"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/errors"
)

// Store persists named designs.
type Store interface {
	// Put stores a design under its name, replacing any existing version.
	Put(ctx context.Context, d *design.Design) error

	// Get retrieves a design by name.
	// Returns ErrCodeDesignNotFound when no such design exists.
	Get(ctx context.Context, name string) (*design.Design, error)

	// List returns the stored design names in sorted order.
	List(ctx context.Context) ([]string, error)

	// Delete removes a design. Deleting a missing design is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// encode validates and serializes a design for storage.
func encode(d *design.Design) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return design.Marshal(d)
}

// decode deserializes a stored design.
func decode(name string, data []byte) (*design.Design, error) {
	d, err := design.Read(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "stored design %q is corrupt", name)
	}
	return d, nil
}
