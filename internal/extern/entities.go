// Package extern wires the out-of-core-scope "external collaborator"
// contracts spec.md §6 names but leaves unspecified: HTML entity decoding,
// reference-URL joining, and the string post-filter family (sed/tr/wc/...).
// reliq's core packages never import this package; instead they expose
// package-level function variable hooks (reliq.DecodeEntities,
// reliq.JoinURL) that cmd/htmlq wires to the functions here at startup.
package extern

import "html"

// DecodeEntities implements the `%D` node-printf modifier (spec.md §6),
// wired into reliq.DecodeEntities. The standard library's html package is
// the one piece of the Go ecosystem purpose-built for exactly this job; no
// example repo in the corpus carries its own entity table, so there is
// nothing more specific to wire here than the stdlib function itself.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}
