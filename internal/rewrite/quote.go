package rewrite

import (
	"strings"

	"github.com/jward/boxify/internal/extract"
)

// Quote returns name as it must be written inside use(pkg[...]):
// unchanged when syntactic, otherwise backtick quoted.
func Quote(name string) string {
	if Syntactic(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

// Syntactic reports whether name is a valid R name that needs no quoting.
func Syntactic(name string) bool {
	if name == "" || extract.IsReserved(name) {
		return false
	}
	c := name[0]
	switch {
	case c == '.':
		if len(name) > 1 && name[1] >= '0' && name[1] <= '9' {
			return false
		}
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= 0x80:
	default:
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '.' || c == '_' || c >= 0x80) {
			return false
		}
	}
	return true
}
