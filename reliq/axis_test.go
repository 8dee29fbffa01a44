package reliq

import "testing"

// buildTestDoc builds a small flat-array document by hand, mirroring
// what reliq.ParseDoc would produce for:
//
//	<a><b></b><c><d></d></c></a><e></e>
//
// Indices: 0=a 1=b 2=c 3=d 4=e
func buildTestDoc() *Doc {
	nodes := []CNode{
		{Lvl: 0, TagCount: 3}, // a: descendants b,c,d
		{Lvl: 1, TagCount: 0}, // b
		{Lvl: 1, TagCount: 1}, // c: descendant d
		{Lvl: 2, TagCount: 0}, // d
		{Lvl: 0, TagCount: 0}, // e
	}
	return &Doc{Nodes: nodes}
}

func TestAxisChildren(t *testing.T) {
	doc := buildTestDoc()
	got := walkAxis(doc, AxisChildren, 0, -1, nil)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected children of a: %v", got)
	}
}

func TestAxisDescendants(t *testing.T) {
	doc := buildTestDoc()
	got := walkAxis(doc, AxisDescendants, 0, -1, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 descendants of a, got %v", got)
	}
}

func TestAxisParent(t *testing.T) {
	doc := buildTestDoc()
	got := walkAxis(doc, AxisParent, 3, -1, nil)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected parent of d to be c, got %v", got)
	}
}

func TestAxisAncestors(t *testing.T) {
	doc := buildTestDoc()
	got := walkAxis(doc, AxisAncestors, 3, -1, nil)
	if len(got) != 2 || got[0] != 2 || got[1] != 0 {
		t.Fatalf("expected ancestors [c, a] of d, got %v", got)
	}
}

func TestAxisSiblingsSubsequent(t *testing.T) {
	doc := buildTestDoc()
	got := walkAxis(doc, AxisSiblingsSubsequent, 0, -1, nil)
	if len(got) != 1 || got[0] != 4 {
		t.Fatalf("expected [e] as subsequent sibling of a, got %v", got)
	}
}

func TestSimplifyAxisMaskSubsumesChildren(t *testing.T) {
	m := maskBit(AxisChildren) | maskBit(AxisDescendants)
	got := simplifyAxisMask(m)
	if got&maskBit(AxisChildren) != 0 {
		t.Fatal("expected children to be subsumed by descendants")
	}
}

func TestSimplifyAxisMaskEverythingEquivalence(t *testing.T) {
	m := maskBit(AxisSelf) | maskBit(AxisBefore) | maskBit(AxisAfter)
	got := simplifyAxisMask(m)
	if got != maskBit(AxisEverything) {
		t.Fatalf("expected self|before|after to collapse to everything, got %v", got)
	}
}

func TestAxisFuncsCanonicalOrder(t *testing.T) {
	m := maskBit(AxisChildren) | maskBit(AxisSelf) | maskBit(AxisAncestors)
	funcs := axisFuncs(m)
	if len(funcs) != 3 || funcs[0] != AxisSelf || funcs[1] != AxisAncestors || funcs[2] != AxisChildren {
		t.Fatalf("unexpected canonical order: %v", funcs)
	}
}
