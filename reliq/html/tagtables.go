// Package html implements the permissive, single-pass HTML parser of
// spec.md §4.1. It reuses golang.org/x/net/html.Tokenizer for lexing —
// exactly the dependency the teacher (dpotapov/go-pages, chtml/html/parse.go)
// forks from — but replaces the teacher's (and x/net/html's) full HTML5
// insertion-mode tree construction with the tag-family-table-driven builder
// spec.md describes: void tags close immediately, raw-text tags consume
// literally, autoclose families implicitly close a previous open tag, and
// "table" is inescapable to stray close tags.
package html

// voidTags never have insides and are always immediately self-closing.
var voidTags = map[string]bool{
	"br": true, "img": true, "input": true, "link": true, "meta": true,
	"hr": true, "col": true, "embed": true, "area": true, "base": true,
	"param": true, "source": true, "track": true, "wbr": true,
	"command": true, "keygen": true, "menuitem": true,
}

// rawTextTags' content is consumed literally until a matching close tag.
var rawTextTags = map[string]bool{
	"script": true, "style": true,
}

// inescapableTags refuse to let an unmatched close tag escape their
// boundary (spec.md §4.1 "Inescapable tags").
var inescapableTags = map[string]bool{
	"table": true,
}

// autocloseTags maps a tag to the set of tag names whose *opening*
// implicitly closes a still-open instance of it (spec.md §4.1 "Auto-closing
// tag families").
var autocloseTags = map[string]map[string]bool{
	"p":        setOf("address", "article", "aside", "blockquote", "details", "div", "dl", "fieldset", "figcaption", "figure", "footer", "form", "h1", "h2", "h3", "h4", "h5", "h6", "header", "hr", "main", "menu", "nav", "ol", "p", "pre", "section", "table", "ul"),
	"li":       setOf("li"),
	"dt":       setOf("dt", "dd"),
	"dd":       setOf("dt", "dd"),
	"tr":       setOf("tr"),
	"td":       setOf("td", "th", "tr"),
	"th":       setOf("td", "th", "tr"),
	"thead":    setOf("tbody", "tfoot"),
	"tbody":    setOf("tbody", "tfoot"),
	"tfoot":    setOf("tbody"),
	"option":   setOf("option", "optgroup"),
	"optgroup": setOf("optgroup"),
	"caption":  setOf("colgroup", "thead", "tbody", "tfoot", "tr"),
	"colgroup": setOf("thead", "tbody", "tfoot", "tr"),
	"rt":       setOf("rt", "rp"),
	"rp":       setOf("rt", "rp"),
}

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// MaxNodeLevel bounds tree depth; exceeding it is a fatal parse error
// (spec.md §3). 8192 in the default mode, 256 in small-stack mode.
const (
	MaxNodeLevel      = 8192
	MaxNodeLevelSmall = 256
)
