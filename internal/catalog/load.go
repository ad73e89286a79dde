package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/boxify/internal/source"
	"github.com/jward/boxify/internal/store"
)

// ErrCatalogUnavailable is wrapped by every Load failure.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// DefaultLocation is the listing looked up relative to the working directory
// when no location is configured.
const DefaultLocation = "all_names.csv"

// IsSnapshot reports whether location names a SQLite snapshot rather than a
// CSV listing.
func IsSnapshot(location string) bool {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".db", ".sqlite", ".sqlite3":
		return !source.IsURL(location)
	}
	return false
}

// Load reads a catalog from location. CSV listings may live at any URL the
// afs service understands; a bare path is read from the local filesystem.
// The source is read fully and released before Load returns.
func Load(ctx context.Context, location string) (*Catalog, error) {
	if location == "" {
		location = DefaultLocation
	}
	if IsSnapshot(location) {
		rows, err := readSnapshot(location)
		if err != nil {
			return nil, fmt.Errorf("catalog: load %s: %w: %w", location, ErrCatalogUnavailable, err)
		}
		return New(rows), nil
	}

	data, err := source.Download(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w: %w", location, ErrCatalogUnavailable, err)
	}
	rows, err := readCSVBytes(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w: %w", location, ErrCatalogUnavailable, err)
	}
	return New(rows), nil
}

// LookupOwners returns the sorted owners of each function in fns. A SQLite
// snapshot is queried directly instead of being loaded whole; other
// locations are loaded as with [Load].
func LookupOwners(ctx context.Context, location string, fns ...string) (map[string][]string, error) {
	owners := make(map[string][]string, len(fns))
	if location == "" {
		location = DefaultLocation
	}
	if !IsSnapshot(location) {
		c, err := Load(ctx, location)
		if err != nil {
			return nil, err
		}
		for _, fn := range fns {
			owners[fn] = c.Owners(fn)
		}
		return owners, nil
	}

	if _, err := os.Stat(location); err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w: %w", location, ErrCatalogUnavailable, err)
	}
	s, err := store.NewStore(location)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w: %w", location, ErrCatalogUnavailable, err)
	}
	defer s.Close()
	rows, err := s.OwnersOf(fns...)
	if err != nil {
		return nil, fmt.Errorf("catalog: owners: %w", err)
	}
	// Rows arrive ordered by function, then package.
	for _, row := range rows {
		owners[row.Function] = append(owners[row.Function], row.Package)
	}
	return owners, nil
}

func readSnapshot(path string) ([]Export, error) {
	// sqlite3 creates missing files on open.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	s, err := store.NewStore(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Exports()
}
