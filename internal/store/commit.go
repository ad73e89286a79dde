package store

import "fmt"

// CommitBatch replaces the exports table with the batch contents and records
// the batch fingerprint and source in one transaction.
func (s *Store) CommitBatch(batch *BatchedStore, source string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM exports"); err != nil {
		return fmt.Errorf("commit batch: clear exports: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO exports (package, function) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("commit batch: prepare: %w", err)
	}
	defer stmt.Close()

	batch.mu.Lock()
	exports := append([]Export(nil), batch.Exports...)
	batch.mu.Unlock()

	for _, e := range exports {
		if _, err := stmt.Exec(e.Package, e.Function); err != nil {
			return fmt.Errorf("commit batch: export %s::%s: %w", e.Package, e.Function, err)
		}
	}

	for key, value := range map[string]string{
		MetadataFingerprint: ComputeFingerprint(exports),
		MetadataSource:      source,
	} {
		if err := upsertMetadata(tx, key, value); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
	}

	return tx.Commit()
}
