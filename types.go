package boxify

import (
	"github.com/jward/boxify/internal/catalog"
	"github.com/jward/boxify/internal/diagnostic"
	"github.com/jward/boxify/internal/extract"
	"github.com/jward/boxify/internal/resolve"
)

// Public type aliases for the internal types used in the Engine API.

type Catalog = catalog.Catalog
type Export = catalog.Export
type Operator = extract.Operator
type Facts = extract.Facts
type ImportMap = resolve.ImportMap
type Decision = resolve.Decision
type Diagnostic = diagnostic.Diagnostic
type Diagnostics = diagnostic.Diagnostics
type Reporter = diagnostic.Reporter

// Output is the result of rewriting one script.
type Output struct {
	// Source is the script's location, empty for in-memory text.
	Source string
	// Text is the rewritten script.
	Text string

	Facts       *Facts
	Imports     *ImportMap
	Decisions   []Decision
	Diagnostics Diagnostics
	// Ranking is the ranked preference list used for tie-breaks.
	Ranking []string
}
