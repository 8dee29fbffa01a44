package extern

import "github.com/dpotapov/htmlq/reliq"

// Ctype classifiers re-exported from reliq/bytes.go, for post-filters
// (tr/cut-style character classes) that need the same byte classification
// the core lexer and pattern engine already use, rather than a second
// hand-rolled table.
var (
	IsSpace = reliq.IsSpace
	IsDigit = reliq.IsDigit
	IsAlpha = reliq.IsAlpha
	IsAlnum = reliq.IsAlnum
)
