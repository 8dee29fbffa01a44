// Package xmlcfg loads an optional query-library XML file: a small,
// named-snippet dictionary a query can reference with `#include NAME`,
// grounded on chtml/component.go's use of beevik/etree to parse a small
// embedded XML document (there, `<c:import>` fragments; here, `<query>`
// elements).
package xmlcfg

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// Library is a named set of reusable query snippets loaded from XML, of
// the shape:
//
//	<queries>
//	  <query name="links">a .href{ %v(href) }</query>
//	  <query name="title">title | "%t\n"</query>
//	</queries>
type Library struct {
	queries map[string]string
}

// Load parses r into a Library. Permissive/auto-close XML reading matches
// chtml/component.go's tolerance for hand-written config fragments.
func Load(r io.Reader) (*Library, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("xmlcfg: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return &Library{queries: map[string]string{}}, nil
	}
	lib := &Library{queries: make(map[string]string)}
	for _, el := range root.ChildElements() {
		if el.Tag != "query" {
			continue
		}
		name := el.SelectAttrValue("name", "")
		if name == "" {
			return nil, fmt.Errorf("xmlcfg: <query> missing required name attribute")
		}
		lib.queries[name] = strings.TrimSpace(el.Text())
	}
	return lib, nil
}

// Lookup returns the named snippet's source text, or ok=false.
func (l *Library) Lookup(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	s, ok := l.queries[name]
	return s, ok
}

// Expand replaces every `#include NAME` occurrence in src with the named
// snippet's text, one pass (included snippets are not themselves expanded,
// avoiding include cycles). Unknown names are left as an error rather than
// silently passed through, so a typo'd include fails at compile time
// instead of becoming a stray pattern token.
func (l *Library) Expand(src string) (string, error) {
	var b strings.Builder
	rest := src
	for {
		idx := strings.Index(rest, "#include")
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		after := rest[idx+len("#include"):]
		trimmed := strings.TrimLeft(after, " \t")
		end := strings.IndexAny(trimmed, " \t\n,;{}|")
		if end < 0 {
			end = len(trimmed)
		}
		name := trimmed[:end]
		if name == "" {
			return "", fmt.Errorf("xmlcfg: #include with no query name")
		}
		snippet, ok := l.Lookup(name)
		if !ok {
			return "", fmt.Errorf("xmlcfg: #include %q: no such query in library", name)
		}
		b.WriteString(snippet)
		rest = trimmed[end:]
	}
	return b.String(), nil
}
