package html

import (
	"bytes"
	"fmt"

	xhtml "golang.org/x/net/html"
)

// Node mirrors reliq.CNode's field layout (spec.md §3); kept as an
// independent type so this package has no dependency on the parent reliq
// package, matching the teacher's chtml/html subpackage boundary.
type Node struct {
	AllOffset, AllLen                 int
	TagOffset, TagLen                 int
	InsidesOffset, InsidesLen         int
	AttribsIndex                      int
	Lvl                               int
	TagCount, TextCount, CommentCount int
}

// Attr mirrors reliq.CAttr.
type Attr struct {
	KeyOffset, KeyLen     int
	ValueOffset, ValueLen int
}

// Options configures parser permissiveness, per spec.md §4.1/§6.
type Options struct {
	// PHPTags enables "<? ... ?>" special-tag recognition (opt-in, per
	// original_source/src/html.c).
	PHPTags bool
	// Autoclose enables the autoclose tag-family table. Spec.md documents
	// it as "enabled if autoclose mode is on"; htmlq enables it by default
	// since every worked example in spec.md §8 relies on it.
	Autoclose bool
	// SmallStack selects the 256-deep limit instead of 8192.
	SmallStack bool
}

// DefaultOptions matches the worked examples of spec.md §8.
func DefaultOptions() Options {
	return Options{Autoclose: true}
}

// ErrDepthExceeded signals the fatal tree-depth overflow of spec.md §3.
type ErrDepthExceeded struct{ Offset int }

func (e *ErrDepthExceeded) Error() string {
	return fmt.Sprintf("maximum tree depth exceeded at offset %d", e.Offset)
}

// openElem is a stack frame for one currently-open tag.
type openElem struct {
	name        string
	nodeIdx     int // index into the builder's nodes slice
	childTag    int
	childText   int
	childCom    int
	tagEndPos   int // byte offset right after the opening tag's '>'
}

type builder struct {
	data      []byte
	opt       Options
	nodes     []Node
	attrs     []Attr
	stack     []openElem
	pos       int // running byte offset of the tokenizer cursor
	maxDepth  int
}

// Parse tokenizes data with x/net/html's Tokenizer and builds the flat
// node/attribute arrays per spec.md §4.1, reusing the teacher's dependency
// on golang.org/x/net/html for lexing while replacing its (and the
// teacher's) full insertion-mode tree construction with the permissive,
// table-driven algorithm the spec describes.
func Parse(data []byte, opt Options) ([]Node, []Attr, error) {
	maxDepth := MaxNodeLevel
	if opt.SmallStack {
		maxDepth = MaxNodeLevelSmall
	}
	b := &builder{data: data, opt: opt, maxDepth: maxDepth}
	z := xhtml.NewTokenizer(bytes.NewReader(data))

	for {
		tt := z.Next()
		raw := z.Raw()
		start := b.pos
		b.pos += len(raw)

		switch tt {
		case xhtml.ErrorToken:
			b.closeAll(b.pos)
			return b.nodes, b.attrs, nil

		case xhtml.TextToken:
			b.emitText(start, raw)

		case xhtml.CommentToken, xhtml.DoctypeToken:
			if b.opt.PHPTags && len(raw) >= 2 && raw[0] == '<' && raw[1] == '?' {
				b.emitPHPTag(start, raw)
			} else {
				b.emitComment(start, raw)
			}

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			tok := z.Token()
			name := tok.Data
			if len(b.stack) >= b.maxDepth {
				return nil, nil, &ErrDepthExceeded{Offset: start}
			}
			if b.opt.Autoclose {
				b.autoClose(name, start)
			}
			b.openTag(tok, start, raw)
			selfClose := tt == xhtml.SelfClosingTagToken || voidTags[name]
			if selfClose {
				b.closeTop(start + len(raw))
			}
			// Raw-text tags (script/style) need no special handling here:
			// x/net/html's tokenizer already folds their bodies into a
			// single following TextToken and still emits the matching
			// EndTagToken, so closeMatching below sees it normally.

		case xhtml.EndTagToken:
			tok := z.Token()
			b.closeMatching(tok.Data, start, raw)
		}
	}
}

func (b *builder) openTag(tok xhtml.Token, start int, raw []byte) int {
	lvl := len(b.stack)
	idx := len(b.nodes)
	tagOff, tagLen := findTagNameSpan(raw)
	n := Node{
		AllOffset:     start,
		TagOffset:     tagOff,
		TagLen:        tagLen,
		AttribsIndex:  len(b.attrs),
		Lvl:           lvl,
	}
	b.nodes = append(b.nodes, n)
	for _, a := range tok.Attr {
		ko, kl, vo, vl := findAttrSpans(raw, a.Key, a.Val)
		b.attrs = append(b.attrs, Attr{KeyOffset: start + ko, KeyLen: kl, ValueOffset: vo, ValueLen: vl})
	}
	b.stack = append(b.stack, openElem{name: tok.Data, nodeIdx: idx, tagEndPos: start + len(raw)})
	return idx
}

// closeTop finalizes the top-of-stack element as self-closing/void: no
// insides, all_len spans just the opening tag.
func (b *builder) closeTop(endPos int) {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	n := &b.nodes[top.nodeIdx]
	n.AllLen = endPos - n.AllOffset
	b.bubbleCounts(top)
}

// closeMatching handles a "</name>" end tag: if it matches the innermost
// open element, close it; otherwise walk up the stack looking for an
// ancestor with that name (spec.md §4.1 "Closing logic"), honoring the
// inescapable-tag boundary. If no match is found, the close tag is ignored.
func (b *builder) closeMatching(name string, start int, raw []byte) {
	end := start + len(raw)
	idx := -1
	for i := len(b.stack) - 1; i >= 0; i-- {
		if equalFold(b.stack[i].name, name) {
			idx = i
			break
		}
		if inescapableTags[b.stack[i].name] {
			// A stray close tag may not escape an inescapable ancestor's
			// boundary, per spec.md §4.1.
			break
		}
	}
	if idx < 0 {
		return // permissive: ignore unmatched close tag
	}
	for len(b.stack) > idx {
		top := b.stack[len(b.stack)-1]
		n := &b.nodes[top.nodeIdx]
		if len(b.stack)-1 == idx {
			n.InsidesOffset = top.tagEndPos - n.AllOffset
			n.InsidesLen = start - top.tagEndPos
			n.AllLen = end - n.AllOffset
		} else {
			// An intermediate, still-open node that never saw its own
			// close tag: close it at the current position too (spec.md
			// §4.1 "all intermediate nodes acquire their all_len and
			// insides_len from the current position").
			n.InsidesOffset = top.tagEndPos - n.AllOffset
			n.InsidesLen = start - top.tagEndPos
			n.AllLen = start - n.AllOffset
		}
		b.stack = b.stack[:len(b.stack)-1]
		b.bubbleCounts(top)
	}
}

// autoClose implicitly closes any open element whose autoclose family lists
// the about-to-open tag name.
func (b *builder) autoClose(name string, start int) {
	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		fam, ok := autocloseTags[top.name]
		if !ok || !fam[name] {
			break
		}
		n := &b.nodes[top.nodeIdx]
		n.InsidesOffset = top.tagEndPos - n.AllOffset
		n.InsidesLen = start - top.tagEndPos
		n.AllLen = start - n.AllOffset
		b.stack = b.stack[:len(b.stack)-1]
		b.bubbleCounts(top)
	}
}

// closeAll finalizes any still-open elements at end of input (unterminated
// markup is tolerated permissively).
func (b *builder) closeAll(end int) {
	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		n := &b.nodes[top.nodeIdx]
		n.InsidesOffset = top.tagEndPos - n.AllOffset
		n.InsidesLen = end - top.tagEndPos
		n.AllLen = end - n.AllOffset
		b.stack = b.stack[:len(b.stack)-1]
		b.bubbleCounts(top)
	}
}

// bubbleCounts propagates a just-closed element's own descendant counts
// (plus itself as one tag) up into its parent's running totals, and
// computes the child's final Lvl-based descendant counts (spec.md §3
// "Descendant counting. As recursion unwinds, the parent accumulates
// counts of child nodes by kind.").
func (b *builder) bubbleCounts(closed openElem) {
	n := &b.nodes[closed.nodeIdx]
	n.TagCount = closed.childTag
	n.TextCount = closed.childText
	n.CommentCount = closed.childCom
	if len(b.stack) == 0 {
		return
	}
	parent := &b.stack[len(b.stack)-1]
	parent.childTag += 1 + closed.childTag
	parent.childText += closed.childText
	parent.childCom += closed.childCom
}

func (b *builder) emitText(start int, raw []byte) {
	kind := classifyText(raw)
	n := Node{
		AllOffset: start,
		AllLen:    len(raw),
		TagLen:    int(kind),
		Lvl:       len(b.stack),
	}
	b.nodes = append(b.nodes, n)
	if len(b.stack) > 0 {
		top := &b.stack[len(b.stack)-1]
		top.childText++
	}
}

// emitPHPTag handles opt-in "<? ... ?>" recognition (spec.md §4.1), emitted
// as a special self-closing tag node named "?". x/net/html's tokenizer
// already scans this as a bogus comment respecting quotes the same way its
// normal comment-scanning does, so no extra quote-aware scanning is needed
// here beyond re-classifying the result as a tag.
func (b *builder) emitPHPTag(start int, raw []byte) {
	n := Node{
		AllOffset: start,
		AllLen:    len(raw),
		TagOffset: 1,
		TagLen:    1,
		Lvl:       len(b.stack),
	}
	b.nodes = append(b.nodes, n)
	if len(b.stack) > 0 {
		top := &b.stack[len(b.stack)-1]
		top.childTag++
	}
}

func (b *builder) emitComment(start int, raw []byte) {
	insideOff, insideLen := commentInsidesSpan(raw)
	n := Node{
		AllOffset:     start,
		AllLen:        len(raw),
		InsidesOffset: insideOff,
		InsidesLen:    insideLen,
		Lvl:           len(b.stack),
	}
	b.nodes = append(b.nodes, n)
	if len(b.stack) > 0 {
		top := &b.stack[len(b.stack)-1]
		top.childCom++
	}
}

// classifyText derives the textKind encoded into TagLen: 0 normal, -1 empty.
// It never returns -2 (error text).
func classifyText(raw []byte) int {
	trimmed := trimSpaceBytes(raw)
	if len(trimmed) == 0 {
		return -1
	}
	return 0
}

func trimSpaceBytes(b []byte) []byte {
	i, j := 0, len(b)
	for i < j && isSpaceByte(b[i]) {
		i++
	}
	for j > i && isSpaceByte(b[j-1]) {
		j--
	}
	return b[i:j]
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// commentInsidesSpan returns the span of a comment's content relative to
// its own start, handling both "<!-- ... -->" and "<!DOCTYPE ...>" forms
// (spec.md §4.1: both are "consumed as a comment node").
func commentInsidesSpan(raw []byte) (offset, length int) {
	if len(raw) >= 7 && string(raw[:4]) == "<!--" {
		end := len(raw) - 3
		if end < 4 {
			end = 4
		}
		return 4, end - 4
	}
	if len(raw) >= 2 && raw[0] == '<' && raw[1] == '!' {
		end := len(raw) - 1
		if end < 2 {
			end = 2
		}
		return 2, end - 2
	}
	return 0, 0
}

// findTagNameSpan locates the tag-name span within a raw "<name ...>" token,
// relative to the token's own start (becomes relative to AllOffset).
func findTagNameSpan(raw []byte) (offset, length int) {
	i := 0
	if i < len(raw) && raw[i] == '<' {
		i++
	}
	if i < len(raw) && raw[i] == '/' {
		i++
	}
	start := i
	for i < len(raw) && isNameByte(raw[i]) {
		i++
	}
	return start, i - start
}

func isNameByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':'
}

// findAttrSpans locates an attribute's key and value spans within the raw
// start-tag bytes. key/val are the decoded strings x/net/html already
// extracted; we re-locate their exact source bytes so spans stay zero-copy
// (spec.md §3 "no unescaping is performed during parsing").
func findAttrSpans(raw []byte, key, val string) (keyOff, keyLen, valOff, valLen int) {
	idx := indexOfToken(raw, key)
	if idx < 0 {
		return 0, 0, 0, 0
	}
	keyOff, keyLen = idx, len(key)
	if val == "" {
		return
	}
	rest := raw[keyOff+keyLen:]
	vi := indexOfQuoted(rest, val)
	if vi < 0 {
		return
	}
	valOff = vi
	valLen = len(val)
	return
}

// indexOfToken finds the first occurrence of an identifier-like token s in
// raw, constrained to not be a substring of a longer identifier.
func indexOfToken(raw []byte, s string) int {
	if s == "" {
		return -1
	}
	for i := 0; i+len(s) <= len(raw); i++ {
		if string(raw[i:i+len(s)]) == s {
			before := i == 0 || !isNameByte(raw[i-1])
			after := i+len(s) == len(raw) || !isNameByte(raw[i+len(s)])
			if before && after {
				return i
			}
		}
	}
	return -1
}

// indexOfQuoted finds val inside rest, accounting for an optional
// surrounding quote character, and returns its offset relative to rest.
func indexOfQuoted(rest []byte, val string) int {
	for i := 0; i+len(val) <= len(rest); i++ {
		if string(rest[i:i+len(val)]) == val {
			return i
		}
	}
	return -1
}
