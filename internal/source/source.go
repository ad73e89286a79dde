// Package source reads catalogs and scripts from local paths or any URL the
// afs service understands (file://, mem://, s3://, ...).
package source

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// Download fetches the full content at location.
func Download(ctx context.Context, location string) ([]byte, error) {
	URL, err := ToURL(location)
	if err != nil {
		return nil, err
	}
	return afs.New().DownloadWithURL(ctx, URL)
}

// Upload replaces the content at location.
func Upload(ctx context.Context, location string, data []byte) error {
	URL, err := ToURL(location)
	if err != nil {
		return err
	}
	return afs.New().Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data))
}

// ToURL turns a bare filesystem path into a file:// URL; URLs pass through.
func ToURL(location string) (string, error) {
	if IsURL(location) {
		return location, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("source: resolve path %q: %w", location, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// IsURL reports whether location carries a scheme.
func IsURL(location string) bool {
	return strings.Contains(location, "://")
}
