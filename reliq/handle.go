package reliq

// handleKind distinguishes a real node handle from a structural output
// marker in the compressed result vector (spec.md §4.8/§9 "Output markers
// in the result vector").
type handleKind int

const (
	hkNode handleKind = iota
	hkFieldUnnamed
	hkFieldNamed
	hkBlockStart
	hkArrayStart
	hkNoFieldsBlockStart
	hkBlockEnd
	// hkLiteral carries text already rendered ahead of output time: the
	// result of wrapping a Block's buffered, per-node-formatted output in
	// its bound expression formatter (the "/" operator, spec.md §4.6/§4.7
	// "fcollector"). The output stage treats it as a finished string,
	// never touching doc/node data for it.
	hkLiteral
)

// handle is a compressed (node_index, parent_index) pair, or a structural
// marker when kind != hkNode (spec.md glossary "Compressed handle").
type handle struct {
	kind   handleKind
	node   int // valid node index when kind == hkNode
	parent int // relative_parent for this node, or -1

	// format carries the node formatter bound to the pattern that produced
	// this handle (the NPattern's trailing `| "..."`), or "" for a raw
	// span. Recording it directly on the handle, rather than only in the
	// ncollector span bookkeeping, lets the output stage apply the right
	// formatter per handle without needing one global result vector.
	format string

	// text holds the finished string for an hkLiteral handle.
	text string

	// Present only on marker handles:
	field *FieldDecl
}

func nodeHandle(idx, parent int) handle {
	return handle{kind: hkNode, node: idx, parent: parent}
}

func nodeHandleFormatted(idx, parent int, format string) handle {
	return handle{kind: hkNode, node: idx, parent: parent, format: format}
}

func literalHandle(text string) handle {
	return handle{kind: hkLiteral, text: text}
}
