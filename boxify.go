package boxify

import (
	"context"
	"errors"

	"github.com/jward/boxify/internal/catalog"
)

// ErrInputUnreadable is wrapped when a script cannot be read.
var ErrInputUnreadable = errors.New("input unreadable")

// ErrCatalogUnavailable is wrapped when the catalog cannot be read.
var ErrCatalogUnavailable = catalog.ErrCatalogUnavailable

// LoadCatalog reads a catalog from a CSV listing (path or afs URL) or a
// SQLite snapshot.
func LoadCatalog(ctx context.Context, location string) (*Catalog, error) {
	return catalog.Load(ctx, location)
}

// NewCatalog builds a catalog from package -> exported functions.
func NewCatalog(exports map[string][]string) *Catalog {
	return catalog.FromMap(exports)
}
