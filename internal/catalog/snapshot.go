package catalog

import (
	"context"
	"fmt"

	"github.com/jward/boxify/internal/source"
	"github.com/jward/boxify/internal/store"
)

// ImportResult describes the outcome of [Import].
type ImportResult struct {
	// Rows is the number of pairs the snapshot holds afterwards.
	Rows int
	// Fingerprint identifies the imported listing.
	Fingerprint string
	// Skipped is true when the snapshot already held the same listing.
	Skipped bool
}

// Import reads the CSV listing at location and writes it into the SQLite
// snapshot at dbPath. When the snapshot's stored fingerprint matches the
// listing the write is skipped unless force is set.
func Import(ctx context.Context, location, dbPath string, force bool) (*ImportResult, error) {
	data, err := source.Download(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("catalog: import %s: %w: %w", location, ErrCatalogUnavailable, err)
	}
	rows, err := readCSVBytes(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: import %s: %w", location, err)
	}

	batch := store.NewBatchedStore()
	for _, row := range rows {
		batch.InsertExport(row)
	}
	fingerprint := store.ComputeFingerprint(batch.Exports)

	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: open snapshot: %w", err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return nil, fmt.Errorf("catalog: migrate snapshot: %w", err)
	}

	result := &ImportResult{Fingerprint: fingerprint}
	if !force {
		stored, err := s.GetMetadata(store.MetadataFingerprint)
		if err != nil {
			return nil, fmt.Errorf("catalog: read snapshot fingerprint: %w", err)
		}
		result.Skipped = stored == fingerprint
	}

	if !result.Skipped {
		if err := s.CommitBatch(batch, location); err != nil {
			return nil, fmt.Errorf("catalog: write snapshot: %w", err)
		}
	}
	if result.Rows, err = s.CountExports(); err != nil {
		return nil, fmt.Errorf("catalog: count snapshot rows: %w", err)
	}
	return result, nil
}
