package reliq

import "strings"

// Engine evaluates a compiled expression tree against a document
// (spec.md §4.7). Execution is strictly single-threaded, deterministic,
// and append-only over its result vector and collectors, matching
// spec.md §5's concurrency model.
type Engine struct {
	doc *Doc
	col collectors
	err error
}

// NewEngine constructs an engine bound to one document. A compiled
// expression is immutable and may be evaluated by many engines
// concurrently, each against its own Doc (spec.md §5).
func NewEngine(doc *Doc) *Engine {
	return &Engine{doc: doc}
}

// Run evaluates root against the whole document (spec.md §4.7 "initially
// empty = match from all document nodes"). The error is non-nil only when
// an expression formatter ("/") failed to apply; per-node formatter
// failures surface from Render instead, since those are resolved lazily
// at render time.
func (e *Engine) Run(root *ExprNode) ([]handle, error) {
	input := e.allNodesInput()
	out := e.execNode(root, input)
	return out, e.err
}

func (e *Engine) allNodesInput() []handle {
	out := make([]handle, 0, len(e.doc.Nodes))
	for i := range e.doc.Nodes {
		if e.doc.Nodes[i].Lvl == 0 {
			out = append(out, nodeHandle(i, -1))
		}
	}
	return out
}

// execNode dispatches on the ExprNode's tagged-union kind.
func (e *Engine) execNode(n *ExprNode, input []handle) []handle {
	switch {
	case n.Pattern != nil:
		return e.execPattern(n, input)
	case n.Field != nil:
		return e.execField(n, input)
	case n.Singular:
		return e.execSingular(n, input)
	case n.CondChains != nil:
		return e.execBlockConditional(n, input)
	case n.Chain != nil:
		return e.execChain(n, input)
	default:
		return e.execBlock(n, input)
	}
}

// execPattern enumerates matches for a leaf NPattern over every anchor in
// input (spec.md §4.5 "Enumeration for one anchor").
func (e *Engine) execPattern(n *ExprNode, input []handle) []handle {
	start := e.resultLen()
	var out []handle
	funcs := axisFuncs(n.Pattern.axisMask)
	last := len(e.doc.Nodes) - 1
	absolute := n.Pattern.absolute
	globalIdx := 0
	for _, anchor := range input {
		perAnchor := 0
		var candidates []int
		for _, ax := range funcs {
			candidates = walkAxis(e.doc, ax, anchor.node, anchor.parent, nil)
			for _, c := range candidates {
				ctx := matchCtx{
					doc:      e.doc,
					idx:      c,
					lvl0:     e.doc.Nodes[anchor.node].Lvl,
					position: perAnchor,
					last:     last,
					engine:   e.hasSubmatch,
				}
				if !n.Pattern.Match(ctx) {
					continue
				}
				if !absolute && n.Pattern.rng != nil && !n.Pattern.rng.Match(perAnchor, last) {
					perAnchor++
					continue
				}
				if absolute && n.Pattern.rng != nil && !n.Pattern.rng.Match(globalIdx, last) {
					perAnchor++
					globalIdx++
					continue
				}
				out = append(out, nodeHandleFormatted(c, anchor.node, n.NodeFormat))
				perAnchor++
				globalIdx++
				if n.Pattern.rng != nil {
					if max := n.Pattern.rng.PredictMax(); max > 0 && perAnchor >= max {
						break
					}
				}
			}
		}
	}
	e.col.pushN(start, start+len(out), n.NodeFormat, 0)
	return out
}

func (e *Engine) hasSubmatch(sub *NPattern, doc *Doc, anchor int) bool {
	funcs := axisFuncs(sub.axisMask)
	last := len(doc.Nodes) - 1
	for _, ax := range funcs {
		for _, c := range walkAxis(doc, ax, anchor, -1, nil) {
			ctx := matchCtx{doc: doc, idx: c, last: last, engine: e.hasSubmatch}
			if sub.Match(ctx) {
				return true
			}
		}
	}
	return false
}

// execBlock evaluates each child against input with its own dest, then
// concatenates into dest (spec.md §4.7 "exec_block"). A bound expression
// formatter ("/") closes over the concatenated, already-node-formatted
// text of the result and replaces it with one literal handle carrying the
// formatter's output (spec.md §4.7/§4.8 "fcollector").
func (e *Engine) execBlock(n *ExprNode, input []handle) []handle {
	var out []handle
	for _, child := range n.Block {
		out = append(out, e.execNode(child, input)...)
	}
	if n.ExprFormat == "" {
		return out
	}
	return e.applyExprFormat(out, n.ExprFormat)
}

// applyExprFormat renders in's real node handles the same way raw mode
// would (bound per-node formatter, or raw span), concatenates that text
// into the fcollector's "buffered bytes", and runs the block's expression
// formatter over it. Per the Open Question in spec.md §9 about fields
// inside a `/`-formatted block, structural field markers make a Block's
// output a record rather than a flat span; mixing the two is left
// unresolved by the source, so a Block carrying both an expression
// formatter and fields is passed through unwrapped instead of guessing.
func (e *Engine) applyExprFormat(in []handle, format string) []handle {
	for _, h := range in {
		if h.kind != hkNode {
			return in
		}
	}
	var buf strings.Builder
	for _, h := range in {
		if h.format != "" {
			s, err := RenderNodePrintf(e.doc, h.node, h.parent, h.format)
			if err != nil {
				e.recordErr(err)
				return in
			}
			buf.WriteString(s)
			continue
		}
		buf.WriteString(e.doc.Nodes[h.node].All().String(e.doc.Data))
	}
	rendered, err := RenderBufferPrintf(buf.String(), format)
	if err != nil {
		e.recordErr(err)
		return in
	}
	return []handle{literalHandle(rendered)}
}

func (e *Engine) recordErr(err error) {
	if e.err == nil {
		e.err = err
	}
}

// execChain feeds each child's output into the next, short-circuiting on
// an empty intermediate result unless the expression carries child
// fields, in which case it continues to preserve block structure for the
// output engine (spec.md §4.7 "exec_chain").
func (e *Engine) execChain(n *ExprNode, input []handle) []handle {
	cur := input
	var lastNonEmpty []handle
	for _, child := range n.Chain {
		t := e.execNode(child, cur)
		if len(t) == 0 {
			if child.ChildFields > 0 {
				cur = t
				continue
			}
			return nil
		}
		lastNonEmpty = t
		cur = t
	}
	return lastNonEmpty
}

// execField wraps a field's sub-expression output with structural
// markers so the output engine can rebuild a JSON-like structure
// (spec.md §4.7 "exec_table", §4.8).
func (e *Engine) execField(n *ExprNode, input []handle) []handle {
	var inner []handle
	if len(n.Block) > 0 {
		for _, child := range n.Block {
			inner = append(inner, e.execNode(child, input)...)
		}
	} else {
		inner = input
	}
	startMarker := hkBlockStart
	if n.Field.Type != nil && n.Field.Type.Kind == ShapeArray {
		startMarker = hkArrayStart
	} else if n.ChildFields == 0 && len(n.Block) == 0 {
		startMarker = hkFieldNamed
		if !n.Field.Named {
			startMarker = hkFieldUnnamed
		}
	}
	out := make([]handle, 0, len(inner)+2)
	out = append(out, handle{kind: startMarker, field: n.Field})
	out = append(out, inner...)
	out = append(out, handle{kind: hkBlockEnd, field: n.Field})
	return out
}

// execSingular iterates each input handle as a one-element set through a
// fresh exec_block, accumulating into dest; each iteration records an
// fcollector entry wrapping its node formatter (spec.md §4.7
// "exec_singular").
func (e *Engine) execSingular(n *ExprNode, input []handle) []handle {
	var out []handle
	block := n.Block[0]
	for _, h := range input {
		nStart, fStart := e.col.marks()
		_ = fStart
		elemStart := e.resultLen()
		one := e.execNode(block, []handle{h})
		out = append(out, one...)
		elemEnd := e.resultLen()
		_ = nStart
		if n.NodeFormat != "" {
			e.col.pushF(elemStart, elemEnd, n.NodeFormat, depthOfFcollector(&e.col))
		}
	}
	return out
}

func depthOfFcollector(c *collectors) int {
	return len(c.f)
}

// execBlockConditional evaluates child chains one at a time, short-
// circuiting per the AND/OR/AND_BLANK semantics and rewinding collectors
// for discarded branches (spec.md §4.7 "exec_block_conditional").
func (e *Engine) execBlockConditional(n *ExprNode, input []handle) []handle {
	somethingFound := false
	somethingFailed := false
	var out []handle
	for _, child := range n.CondChains {
		nMark, fMark := e.col.marks()
		res := e.execNode(child, input)
		ok := len(res) > 0
		if ok {
			somethingFound = true
			out = append(out, res...)
		} else {
			somethingFailed = true
			e.col.rewind(nMark, fMark)
		}
		switch n.CondKind {
		case condOr:
			if ok && !n.CondAll {
				return out
			}
		case condAnd:
			if !ok {
				return nil
			}
		case condAndBlank:
			if !ok && n.CondAll {
				return nil
			}
		}
	}
	switch n.CondKind {
	case condAnd, condAndBlank:
		if somethingFailed {
			return nil
		}
	}
	_ = somethingFound
	return out
}

func (e *Engine) resultLen() int {
	if len(e.col.n) == 0 {
		return 0
	}
	return e.col.n[len(e.col.n)-1].end
}
