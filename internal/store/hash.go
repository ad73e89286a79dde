package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// ComputeFingerprint computes a deterministic hash of a set of exports.
// Row order and exact duplicates do not affect the result.
func ComputeFingerprint(exports []Export) string {
	keys := make([]string, 0, len(exports))
	seen := make(map[Export]bool, len(exports))
	for _, e := range exports {
		if seen[e] {
			continue
		}
		seen[e] = true
		keys = append(keys, e.Package+"\x00"+e.Function)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "export:%s\n", k)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
