package extern

import "net/url"

// JoinURL implements the `U` output-field type's optional base-URL
// argument (spec.md §6 "U(URL, optional base)"), wired into reliq.JoinURL.
// No example repo in the corpus carries a URL-joining library; net/url's
// ResolveReference is the standard, RFC 3986-correct way to do this and
// there is no more-specific third-party candidate to reach for instead.
func JoinURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
