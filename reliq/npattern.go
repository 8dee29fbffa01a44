package reliq

import "fmt"

// typeFilter selects which node kinds a pattern may match (spec.md §4.4).
type typeFilter int

const (
	filterTag typeFilter = iota
	filterComment
	filterText
	filterTextNoErr
	filterTextErr
	filterTextEmpty
	filterTextAll
)

var typeHookNames = map[string]typeFilter{
	"tag":        filterTag,
	"comment":    filterComment,
	"text":       filterText,
	"textnoerr":  filterTextNoErr,
	"texterr":    filterTextErr,
	"textempty":  filterTextEmpty,
	"textall":    filterTextAll,
}

var axisHookNames = map[string]Axis{
	"self":                      AxisSelf,
	"descendants":               AxisDescendants,
	"children":                  AxisChildren,
	"parent":                    AxisParent,
	"relative_parent":           AxisRelativeParent,
	"ancestors":                 AxisAncestors,
	"siblings_preceding":        AxisSiblingsPreceding,
	"siblings_subsequent":       AxisSiblingsSubsequent,
	"full_siblings_preceding":   AxisFullSiblingsPreceding,
	"full_siblings_subsequent":  AxisFullSiblingsSubsequent,
	"preceding":                 AxisPreceding,
	"subsequent":                AxisSubsequent,
	"before":                    AxisBefore,
	"after":                     AxisAfter,
	"everything":                AxisEverything,
}

// globalHook is a small integer derived from a candidate node, compared to
// a range (spec.md §4.4 "Global/positional").
type globalHookKind int

const (
	hookLevel globalHookKind = iota
	hookLevelRelative
	hookTagCount
	hookCommentsCount
	hookTextCount
	hookAllCount
	hookPosition
	hookPositionRelative
	hookIndex
)

var globalHookNames = map[string]globalHookKind{
	"level":              hookLevel,
	"level_relative":      hookLevelRelative,
	"tag_count":           hookTagCount,
	"comments_count":      hookCommentsCount,
	"text_count":          hookTextCount,
	"all_count":           hookAllCount,
	"position":            hookPosition,
	"position_relative":   hookPositionRelative,
	"index":               hookIndex,
}

type globalHookPred struct {
	kind globalHookKind
	rng  *Range
}

// nodeHookKind is a node-only hook extracting a string/count, compared
// against a pattern/range/sub-expression.
type nodeHookKind int

const (
	hookName nodeHookKind = iota
	hookAll
	hookInsides
	hookStart
	hookEnd
	hookEndStrip
	hookAttributes
	hookHas
)

type nodeHookPred struct {
	kind nodeHookKind
	pat  *Pattern // for hookName/hookAll/hookInsides/hookStart/hookEnd/hookEndStrip
	rng  *Range   // for hookAttributes (count)
	has  *NPattern
}

// attrPred matches one attribute: name pattern, optional value pattern,
// a positional range over attribute index, and an inverted flag
// (spec.md §4.4 "Attribute").
type attrPred struct {
	name     *Pattern
	value    *Pattern
	hasValue bool
	rng      *Range
	inverted bool
}

// predicate is a tagged union: hook, attribute, or group.
type predicate struct {
	global *globalHookPred
	node   *nodeHookPred
	attr   *attrPred
	group  [][]predicate // OR of AND-lists; alternatives separated at top level
}

// MaxGroupLevel bounds nested predicate groups (spec.md §4.4).
const MaxGroupLevel = 256

// NPattern is a compiled single-hop matcher (spec.md §4.4).
type NPattern struct {
	typ        typeFilter
	typeIsSet  bool
	preds      []predicate
	rng        *Range
	axisMask   axisMask
	axisIsSet  bool
	absolute   bool
	empty      bool
}

// CompileNPattern parses the whitespace-tokenized node-pattern grammar.
func CompileNPattern(src []byte) (*NPattern, error) {
	np := &NPattern{rng: nil}
	toks, err := tokenizeNPattern(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		np.empty = true
		return np, nil
	}
	nameSeen := false
	for _, tok := range toks {
		if len(tok) == 0 {
			continue
		}
		switch {
		case tok[0] == '[':
			r, err := CompileRange(tok[1 : len(tok)-1])
			if err != nil {
				return nil, err
			}
			np.rng = r
		case tok[0] == '@':
			if err := np.applyHookToken(tok[1:]); err != nil {
				return nil, err
			}
		case tok[0] == '(':
			grp, err := parseGroup(tok, 1)
			if err != nil {
				return nil, err
			}
			np.preds = append(np.preds, predicate{group: grp})
		case tok[0] == '.':
			np.preds = append(np.preds, attrLiteralPred("class", tok[1:], false))
		case tok[0] == '#':
			np.preds = append(np.preds, attrLiteralPred("id", tok[1:], false))
		case tok[0] == '+':
			p, err := attrPredFromToken(tok[1:], false)
			if err != nil {
				return nil, err
			}
			np.preds = append(np.preds, p)
		case tok[0] == '-':
			p, err := attrPredFromToken(tok[1:], true)
			if err != nil {
				return nil, err
			}
			np.preds = append(np.preds, p)
		default:
			if !nameSeen && np.typ == filterTag {
				nameSeen = true
				pat, err := CompilePattern(wrapQuoteFull(tok))
				if err != nil {
					return nil, err
				}
				np.preds = append(np.preds, predicate{node: &nodeHookPred{kind: hookName, pat: pat}})
			} else {
				p, err := attrPredFromToken(tok, false)
				if err != nil {
					return nil, err
				}
				np.preds = append(np.preds, p)
			}
		}
	}
	if !np.axisIsSet {
		np.axisMask = maskBit(AxisSelf) | maskBit(AxisDescendants)
	}
	if len(np.preds) == 0 && np.rng == nil {
		np.empty = true
	}
	return np, nil
}

func (np *NPattern) applyHookToken(body []byte) error {
	name, rest := splitHookName(body)
	if tf, ok := typeHookNames[name]; ok {
		if np.typeIsSet {
			return fmt.Errorf("conflicting type hooks")
		}
		np.typ = tf
		np.typeIsSet = true
		return nil
	}
	if ax, ok := axisHookNames[name]; ok {
		np.axisMask |= maskBit(ax)
		np.axisIsSet = true
		return nil
	}
	if name == "absolute" {
		np.absolute = true
		return nil
	}
	if gk, ok := globalHookNames[name]; ok {
		r, err := compileBracketRange(rest)
		if err != nil {
			return err
		}
		np.preds = append(np.preds, predicate{global: &globalHookPred{kind: gk, rng: r}})
		return nil
	}
	switch name {
	case "name", "all", "insides", "start", "end", "endstrip":
		pat, err := compileBracketPattern(rest)
		if err != nil {
			return err
		}
		kind := map[string]nodeHookKind{
			"name": hookName, "all": hookAll, "insides": hookInsides,
			"start": hookStart, "end": hookEnd, "endstrip": hookEndStrip,
		}[name]
		np.preds = append(np.preds, predicate{node: &nodeHookPred{kind: kind, pat: pat}})
	case "attributes":
		r, err := compileBracketRange(rest)
		if err != nil {
			return err
		}
		np.preds = append(np.preds, predicate{node: &nodeHookPred{kind: hookAttributes, rng: r}})
	case "has":
		sub, err := CompileNPattern(trimSpace(rest))
		if err != nil {
			return err
		}
		np.preds = append(np.preds, predicate{node: &nodeHookPred{kind: hookHas, has: sub}})
	default:
		return fmt.Errorf("unknown hook @%s", name)
	}
	return nil
}

func splitHookName(body []byte) (name string, rest []byte) {
	i := 0
	for i < len(body) && isNameChar(body[i]) {
		i++
	}
	return string(body[:i]), body[i:]
}

func compileBracketRange(b []byte) (*Range, error) {
	b = trimSpace(b)
	if len(b) == 0 {
		return nil, nil
	}
	if b[0] == '[' && b[len(b)-1] == ']' {
		return CompileRange(b[1 : len(b)-1])
	}
	return CompileRange(b)
}

func compileBracketPattern(b []byte) (*Pattern, error) {
	b = trimSpace(b)
	if len(b) == 0 {
		return nil, nil
	}
	return CompilePattern(b)
}

func attrLiteralPred(name string, valueTok []byte, inverted bool) predicate {
	namePat, _ := CompilePattern([]byte(`"` + name + `"`))
	valuePat, _ := CompilePattern(append(append([]byte(`<Wf>"`), valueTok...), '"'))
	return predicate{attr: &attrPred{name: namePat, value: valuePat, hasValue: true, inverted: inverted}}
}

func attrPredFromToken(tok []byte, inverted bool) (predicate, error) {
	eq := indexByte(tok, '=')
	if eq < 0 {
		namePat, err := CompilePattern(wrapQuote(tok))
		if err != nil {
			return predicate{}, err
		}
		return predicate{attr: &attrPred{name: namePat, inverted: inverted}}, nil
	}
	namePat, err := CompilePattern(wrapQuote(tok[:eq]))
	if err != nil {
		return predicate{}, err
	}
	valuePat, err := CompilePattern(wrapQuote(tok[eq+1:]))
	if err != nil {
		return predicate{}, err
	}
	return predicate{attr: &attrPred{name: namePat, value: valuePat, hasValue: true, inverted: inverted}}, nil
}

// wrapQuoteFull wraps a bare, unflagged tag name token into a full-match
// pattern: a bare tag-name token (e.g. "a" in "a [1]") selects exactly
// that tag, not any tag whose name contains it.
func wrapQuoteFull(tok []byte) []byte {
	if len(tok) > 0 && (tok[0] == '"' || tok[0] == '\'' || tok[0] == '<') {
		return tok
	}
	out := make([]byte, 0, len(tok)+6)
	out = append(out, '<', 'f', '>', '"')
	out = append(out, tok...)
	out = append(out, '"')
	return out
}

func wrapQuote(tok []byte) []byte {
	if len(tok) > 0 && (tok[0] == '"' || tok[0] == '\'' || tok[0] == '<') {
		return tok
	}
	out := make([]byte, 0, len(tok)+2)
	out = append(out, '"')
	out = append(out, tok...)
	out = append(out, '"')
	return out
}

// parseGroup parses "(alt1)(alt2)…" alternatives, each alternative a
// whitespace-separated predicate list, at group nesting `level`.
func parseGroup(tok []byte, level int) ([][]predicate, error) {
	if level > MaxGroupLevel {
		return nil, fmt.Errorf("group nesting exceeds MAX_GROUP_LEVEL")
	}
	var alts [][]predicate
	i := 0
	for i < len(tok) {
		if tok[i] != '(' {
			return nil, fmt.Errorf("malformed group")
		}
		depth := 1
		j := i + 1
		for j < len(tok) && depth > 0 {
			switch tok[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			j++
		}
		if depth != 0 {
			return nil, fmt.Errorf("unterminated group")
		}
		body := tok[i+1 : j-1]
		sub, err := CompileNPattern(body)
		if err != nil {
			return nil, err
		}
		alts = append(alts, sub.preds)
		i = j
	}
	return alts, nil
}

// tokenizeNPattern splits on whitespace outside quotes/brackets/parens.
func tokenizeNPattern(src []byte) ([][]byte, error) {
	var toks [][]byte
	i := 0
	for i < len(src) {
		for i < len(src) && isSpace(src[i]) {
			i++
		}
		if i >= len(src) {
			break
		}
		start := i
		switch src[i] {
		case '[':
			end := matchBracket(src, i, '[', ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated [ in node pattern")
			}
			i = end + 1
		case '(':
			end := matchBracket(src, i, '(', ')')
			if end < 0 {
				return nil, fmt.Errorf("unterminated ( in node pattern")
			}
			i = end + 1
			for i < len(src) && src[i] == '(' {
				end2 := matchBracket(src, i, '(', ')')
				if end2 < 0 {
					return nil, fmt.Errorf("unterminated ( in node pattern")
				}
				i = end2 + 1
			}
		case '"', '\'':
			q := src[i]
			i++
			for i < len(src) && src[i] != q {
				if src[i] == '\\' {
					i++
				}
				i++
			}
			if i < len(src) {
				i++
			}
		default:
			for i < len(src) && !isSpace(src[i]) {
				if src[i] == '"' || src[i] == '\'' {
					q := src[i]
					i++
					for i < len(src) && src[i] != q {
						if src[i] == '\\' {
							i++
						}
						i++
					}
					if i < len(src) {
						i++
					}
					continue
				}
				i++
			}
		}
		toks = append(toks, src[start:i])
	}
	return toks, nil
}

func matchBracket(src []byte, open int, o, c byte) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case o:
			depth++
		case c:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchCtx carries what's needed to evaluate node-only and global hooks
// against one candidate, without re-deriving it per predicate.
type matchCtx struct {
	doc      *Doc
	idx      int
	lvl0     int // level of the anchor, for level_relative
	position int
	last     int
	engine   func(sub *NPattern, doc *Doc, anchor int) bool // for "has"
}

func (np *NPattern) matchesType(n *CNode) bool {
	if !np.typeIsSet {
		return n.Kind() == KindTag
	}
	switch np.typ {
	case filterTag:
		return n.Kind() == KindTag
	case filterComment:
		return n.Kind() == KindComment
	case filterText:
		return n.Kind() == KindText && n.TextKind() != textError
	case filterTextNoErr:
		return n.Kind() == KindText && n.TextKind() != textError
	case filterTextErr:
		return n.Kind() == KindText && n.TextKind() == textError
	case filterTextEmpty:
		return n.Kind() == KindText && n.TextKind() == textEmpty
	case filterTextAll:
		return n.Kind() == KindText
	}
	return false
}

// Match evaluates the pattern's kind filter and predicate list against
// one candidate node. It does not enumerate axes; see walkAxis.
func (np *NPattern) Match(ctx matchCtx) bool {
	n := &ctx.doc.Nodes[ctx.idx]
	if !np.matchesType(n) {
		return false
	}
	if np.empty {
		return true
	}
	for _, p := range np.preds {
		if !matchPredicate(p, ctx) {
			return false
		}
	}
	return true
}

func matchPredicate(p predicate, ctx matchCtx) bool {
	switch {
	case p.global != nil:
		return matchGlobalHook(p.global, ctx)
	case p.node != nil:
		return matchNodeHook(p.node, ctx)
	case p.attr != nil:
		return matchAttrPred(p.attr, ctx)
	case p.group != nil:
		for _, alt := range p.group {
			ok := true
			for _, sub := range alt {
				if !matchPredicate(sub, ctx) {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
		return false
	}
	return true
}

func matchGlobalHook(g *globalHookPred, ctx matchCtx) bool {
	n := &ctx.doc.Nodes[ctx.idx]
	var v int
	switch g.kind {
	case hookLevel:
		v = n.Lvl
	case hookLevelRelative:
		v = n.Lvl - ctx.lvl0
	case hookTagCount:
		v = n.TagCount
	case hookCommentsCount:
		v = n.CommentCount
	case hookTextCount:
		v = n.TextCount
	case hookAllCount:
		v = n.DescendantCount()
	case hookPosition:
		v = ctx.position
	case hookPositionRelative:
		v = ctx.position
	case hookIndex:
		v = ctx.idx
	}
	if g.rng == nil {
		return true
	}
	return g.rng.Match(v, ctx.last)
}

func matchNodeHook(h *nodeHookPred, ctx matchCtx) bool {
	n := &ctx.doc.Nodes[ctx.idx]
	data := ctx.doc.Data
	switch h.kind {
	case hookName:
		return h.pat.Match(n.Tag().Bytes(data))
	case hookAll:
		return h.pat.Match(n.All().Bytes(data))
	case hookInsides:
		return h.pat.Match(n.Insides().Bytes(data))
	case hookStart:
		return h.pat.Match(startTagBytes(n, data))
	case hookEnd, hookEndStrip:
		return h.pat.Match(endTagBytes(n, data))
	case hookAttributes:
		cnt := len(ctx.doc.AttribsOf(ctx.idx))
		if h.rng == nil {
			return cnt > 0
		}
		return h.rng.Match(cnt, ctx.last)
	case hookHas:
		if ctx.engine == nil {
			return false
		}
		return ctx.engine(h.has, ctx.doc, ctx.idx)
	}
	return false
}

func startTagBytes(n *CNode, data []byte) []byte {
	all := n.All()
	ins := n.Insides()
	end := ins.Offset - all.Offset
	if end < 0 || end > all.Len {
		return all.Bytes(data)
	}
	return all.Bytes(data)[:end]
}

func endTagBytes(n *CNode, data []byte) []byte {
	all := n.All()
	ins := n.Insides()
	start := (ins.Offset - all.Offset) + ins.Len
	if start < 0 || start > all.Len {
		return nil
	}
	return all.Bytes(data)[start:]
}

func matchAttrPred(a *attrPred, ctx matchCtx) bool {
	attrs := ctx.doc.AttribsOf(ctx.idx)
	data := ctx.doc.Data
	found := false
	for i, at := range attrs {
		if a.rng != nil && !a.rng.Match(i, len(attrs)-1) {
			continue
		}
		if !a.name.Match(at.Key().Bytes(data)) {
			continue
		}
		if a.hasValue && !a.value.Match(at.Value().Bytes(data)) {
			continue
		}
		found = true
		break
	}
	if a.inverted {
		return !found
	}
	return found
}
