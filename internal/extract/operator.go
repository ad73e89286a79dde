package extract

// Operator is a non-standard infix operator provided by a package. Operators
// are not syntactic calls, so the extractor synthesizes a call and a load for
// each one that appears in a script.
type Operator struct {
	Token   string
	Package string
}

// DefaultOperators returns the magrittr pipe family.
func DefaultOperators() []Operator {
	return []Operator{
		{Token: "%>%", Package: "magrittr"},
		{Token: "%T>%", Package: "magrittr"},
		{Token: "%<>%", Package: "magrittr"},
	}
}

// DefaultLoadFunctions returns the functions whose single-package calls are
// load directives.
func DefaultLoadFunctions() []string {
	return []string{"library", "require"}
}
