package invoicepdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store persists exported documents.
type Store interface {
	// Save writes data at path, replacing any existing content.
	Save(ctx context.Context, path string, data []byte) error
}

// StoreFunc adapts a function to the [Store] interface.
type StoreFunc func(ctx context.Context, path string, data []byte) error

// Save calls f(ctx, path, data).
func (f StoreFunc) Save(ctx context.Context, path string, data []byte) error {
	return f(ctx, path, data)
}

// FileStore writes documents to the local file system.
type FileStore struct {
	// CreateDirs creates missing parent directories before writing.
	CreateDirs bool
	// Perm is the mode of created files. Zero means 0o644.
	Perm fs.FileMode
}

// Save writes data to path. The content is written to a temporary file
// in the same directory and renamed into place, so concurrent saves to one
// path never interleave and readers see either the old or the new file.
func (s FileStore) Save(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return errors.New("invoicepdf: empty destination path")
	}

	dir := filepath.Dir(path)
	if s.CreateDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("invoicepdf: creating directory: %w", err)
		}
	}

	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}

	tmp, err := os.CreateTemp(dir, ".invoicepdf-*.tmp")
	if err != nil {
		return fmt.Errorf("invoicepdf: writing file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("invoicepdf: writing file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("invoicepdf: writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("invoicepdf: writing file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("invoicepdf: writing file: %w", err)
	}
	committed = true
	return nil
}

// RouteStore dispatches Save by the URL scheme of the path. Paths of the
// form "scheme://..." go to the store registered for that scheme; plain
// paths and unknown schemes go to Fallback.
type RouteStore struct {
	Fallback Store
	Schemes  map[string]Store
}

// NewRouteStore returns a RouteStore writing plain paths to fallback.
func NewRouteStore(fallback Store) *RouteStore {
	return &RouteStore{Fallback: fallback, Schemes: make(map[string]Store)}
}

// Handle registers st for paths starting with scheme "://".
func (r *RouteStore) Handle(scheme string, st Store) *RouteStore {
	if r.Schemes == nil {
		r.Schemes = make(map[string]Store)
	}
	r.Schemes[strings.ToLower(scheme)] = st
	return r
}

// Save forwards to the store matching path.
func (r *RouteStore) Save(ctx context.Context, path string, data []byte) error {
	st := r.route(path)
	if st == nil {
		return fmt.Errorf("invoicepdf: no store for %q", path)
	}
	return st.Save(ctx, path, data)
}

func (r *RouteStore) route(path string) Store {
	if scheme, _, found := strings.Cut(path, "://"); found {
		if st, ok := r.Schemes[strings.ToLower(scheme)]; ok {
			return st
		}
	}
	return r.Fallback
}

var (
	_ Store = FileStore{}
	_ Store = (*RouteStore)(nil)
)
