package reliq

// Axis is a structural traversal direction rooted at an anchor node
// (spec.md §4.5).
type Axis int

const (
	AxisSelf Axis = iota
	AxisDescendants
	AxisChildren
	AxisParent
	AxisRelativeParent
	AxisAncestors
	AxisSiblingsPreceding
	AxisSiblingsSubsequent
	AxisFullSiblingsPreceding
	AxisFullSiblingsSubsequent
	AxisPreceding
	AxisSubsequent
	AxisBefore
	AxisAfter
	AxisEverything

	axisCount
)

// AxisFuncsMax bounds the number of traversal functions a compiled axis
// mask expands to.
const AxisFuncsMax = 8

type axisMask uint16

func maskBit(a Axis) axisMask { return 1 << uint(a) }

// canonicalAxisOrder fixes the enumeration order within one anchor
// (spec.md §4.5 "within an anchor, matches are emitted in the anchor's
// canonical axis order").
var canonicalAxisOrder = []Axis{
	AxisSelf,
	AxisAncestors,
	AxisParent,
	AxisRelativeParent,
	AxisSiblingsPreceding,
	AxisFullSiblingsPreceding,
	AxisPreceding,
	AxisBefore,
	AxisChildren,
	AxisDescendants,
	AxisSiblingsSubsequent,
	AxisFullSiblingsSubsequent,
	AxisSubsequent,
	AxisAfter,
	AxisEverything,
}

// simplifyAxisMask removes subsumed axes and substitutes equivalents
// (spec.md §4.5): descendants subsumes children; everything replaces
// self ∪ before ∪ after when all three are present.
func simplifyAxisMask(m axisMask) axisMask {
	if m&maskBit(AxisDescendants) != 0 {
		m &^= maskBit(AxisChildren)
	}
	everythingEquiv := maskBit(AxisSelf) | maskBit(AxisBefore) | maskBit(AxisAfter)
	if m&everythingEquiv == everythingEquiv {
		m &^= everythingEquiv
		m |= maskBit(AxisEverything)
	}
	if m&maskBit(AxisEverything) != 0 {
		m &^= maskBit(AxisSelf) | maskBit(AxisDescendants) | maskBit(AxisChildren) |
			maskBit(AxisParent) | maskBit(AxisAncestors) |
			maskBit(AxisSiblingsPreceding) | maskBit(AxisSiblingsSubsequent) |
			maskBit(AxisFullSiblingsPreceding) | maskBit(AxisFullSiblingsSubsequent) |
			maskBit(AxisPreceding) | maskBit(AxisSubsequent) |
			maskBit(AxisBefore) | maskBit(AxisAfter)
	}
	return m
}

// axisFuncs converts a simplified mask into canonically ordered
// traversal functions, capped at AxisFuncsMax.
func axisFuncs(m axisMask) []Axis {
	m = simplifyAxisMask(m)
	var out []Axis
	for _, a := range canonicalAxisOrder {
		if m&maskBit(a) != 0 {
			out = append(out, a)
			if len(out) == AxisFuncsMax {
				break
			}
		}
	}
	return out
}

// walkAxis appends the node indices reached from anchor idx along axis a
// to out. Downward and following axes are appended in document order;
// ancestors and preceding siblings are appended nearest-first. relParent is the passed-in relative parent
// used only by AxisRelativeParent (spec.md §4.6); -1 if none.
func walkAxis(doc *Doc, a Axis, idx, relParent int, out []int) []int {
	n := len(doc.Nodes)
	switch a {
	case AxisSelf:
		return append(out, idx)
	case AxisDescendants:
		start, end := doc.Descendants(idx)
		for i := start; i < end; i++ {
			out = append(out, i)
		}
		return out
	case AxisChildren:
		return append(out, doc.Children(idx)...)
	case AxisParent:
		if p := doc.ParentOf(idx); p >= 0 {
			out = append(out, p)
		}
		return out
	case AxisRelativeParent:
		if relParent >= 0 {
			out = append(out, relParent)
		}
		return out
	case AxisAncestors:
		p := doc.ParentOf(idx)
		for p >= 0 {
			out = append(out, p)
			p = doc.ParentOf(p)
		}
		return out
	case AxisSiblingsPreceding, AxisSiblingsSubsequent:
		parent := doc.ParentOf(idx)
		var siblings []int
		if parent < 0 {
			siblings = topLevelNodes(doc)
		} else {
			siblings = doc.Children(parent)
		}
		pos := indexOfInt(siblings, idx)
		if pos < 0 {
			return out
		}
		if a == AxisSiblingsPreceding {
			for i := pos - 1; i >= 0; i-- {
				out = append(out, siblings[i])
			}
		} else {
			for i := pos + 1; i < len(siblings); i++ {
				out = append(out, siblings[i])
			}
		}
		return out
	case AxisFullSiblingsPreceding, AxisFullSiblingsSubsequent:
		lvl := doc.Nodes[idx].Lvl
		if a == AxisFullSiblingsPreceding {
			var found []int
			for i := idx - 1; i >= 0; i-- {
				if doc.Nodes[i].Lvl < lvl {
					break
				}
				if doc.Nodes[i].Lvl == lvl {
					found = append(found, i)
				}
			}
			reverseInts(found)
			out = append(out, found...)
		} else {
			_, dend := doc.Descendants(idx)
			for i := dend; i < n; i++ {
				if doc.Nodes[i].Lvl < lvl {
					break
				}
				if doc.Nodes[i].Lvl == lvl {
					out = append(out, i)
				}
			}
		}
		return out
	case AxisPreceding:
		for i := 0; i < idx; i++ {
			out = append(out, i)
		}
		return out
	case AxisSubsequent:
		_, end := doc.Descendants(idx)
		for i := end; i < n; i++ {
			out = append(out, i)
		}
		return out
	case AxisBefore:
		out = walkAxis(doc, AxisPreceding, idx, relParent, out)
		out = walkAxis(doc, AxisAncestors, idx, relParent, out)
		return out
	case AxisAfter:
		out = walkAxis(doc, AxisSubsequent, idx, relParent, out)
		out = walkAxis(doc, AxisDescendants, idx, relParent, out)
		return out
	case AxisEverything:
		for i := 0; i < n; i++ {
			out = append(out, i)
		}
		return out
	}
	return out
}

func topLevelNodes(doc *Doc) []int {
	var out []int
	for i := range doc.Nodes {
		if doc.Nodes[i].Lvl == 0 {
			out = append(out, i)
		}
	}
	return out
}

func indexOfInt(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
