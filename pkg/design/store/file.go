package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/errors"
)

// DirStore stores each design as a <name>.toml file in a directory.
type DirStore struct {
	dir string
}

// NewDirStore creates a directory-backed store.
// The directory is created if it doesn't exist.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to create store directory")
	}
	return &DirStore{dir: dir}, nil
}

// Put writes the design to <dir>/<name>.toml.
func (s *DirStore) Put(ctx context.Context, d *design.Design) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(d.Name), data, 0644)
}

// Get reads a design from <dir>/<name>.toml.
func (s *DirStore) Get(ctx context.Context, name string) (*design.Design, error) {
	if err := errors.ValidateDesignName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeDesignNotFound, "design %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to read design %q", name)
	}
	return decode(name, data)
}

// List returns the names of all .toml files in the directory, sorted.
func (s *DirStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to read store directory")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the design file. Missing files are ignored.
func (s *DirStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDesignName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for a directory store.
func (s *DirStore) Close() error {
	return nil
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, name+".toml")
}

// Ensure DirStore implements Store.
var _ Store = (*DirStore)(nil)
