package store

// Export is one (package, function) row of a catalog listing.
type Export struct {
	Package  string
	Function string
}

// MetadataFingerprint is the metadata key holding the fingerprint of the
// listing the exports table was built from.
const MetadataFingerprint = "catalog_fingerprint"

// MetadataSource is the metadata key holding the location the exports were
// imported from.
const MetadataSource = "catalog_source"
