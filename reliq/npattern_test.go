package reliq

import "testing"

func docFromHTML(data string) *Doc {
	nodes := []CNode{
		{AllOffset: 0, AllLen: len(data), TagOffset: 1, TagLen: 1, Lvl: 0},
	}
	return &Doc{Data: []byte(data), Nodes: nodes}
}

func TestCompileNPatternEmpty(t *testing.T) {
	np, err := CompileNPattern(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !np.empty {
		t.Fatal("expected empty pattern")
	}
	doc := docFromHTML("<a>x</a>")
	if !np.Match(matchCtx{doc: doc, idx: 0}) {
		t.Fatal("empty pattern should match any tag node")
	}
}

func TestCompileNPatternName(t *testing.T) {
	np, err := CompileNPattern([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	doc := &Doc{
		Data: []byte("<a></a><b></b>"),
		Nodes: []CNode{
			{AllOffset: 0, AllLen: 7, TagOffset: 1, TagLen: 1, Lvl: 0},
			{AllOffset: 7, AllLen: 7, TagOffset: 1, TagLen: 1, Lvl: 0},
		},
	}
	if !np.Match(matchCtx{doc: doc, idx: 0}) {
		t.Fatal("expected match on <a>")
	}
	if np.Match(matchCtx{doc: doc, idx: 1}) {
		t.Fatal("expected no match on <b>")
	}
}

func TestCompileNPatternClassAttr(t *testing.T) {
	np, err := CompileNPattern([]byte("p .a"))
	if err != nil {
		t.Fatal(err)
	}
	data := []byte(`<p class="a b">t</p>`)
	doc := &Doc{
		Data: data,
		Nodes: []CNode{
			{AllOffset: 0, AllLen: len(data), TagOffset: 1, TagLen: 1, Lvl: 0, AttribsIndex: 0},
		},
		Attrib: []CAttr{
			{KeyOffset: 3, KeyLen: 5, ValueOffset: 2, ValueLen: 3},
		},
	}
	if !np.Match(matchCtx{doc: doc, idx: 0}) {
		t.Fatal("expected class predicate to match")
	}
}

func TestCompileNPatternPositionRange(t *testing.T) {
	np, err := CompileNPattern([]byte("p [1]"))
	if err != nil {
		t.Fatal(err)
	}
	if np.rng == nil {
		t.Fatal("expected position range to be compiled")
	}
	if !np.rng.Match(1, 5) {
		t.Fatal("expected range to match position 1")
	}
}

func TestCompileNPatternAxisHook(t *testing.T) {
	np, err := CompileNPattern([]byte("@children a"))
	if err != nil {
		t.Fatal(err)
	}
	if np.axisMask&maskBit(AxisChildren) == 0 {
		t.Fatal("expected children axis to be selected")
	}
}

func TestCompileNPatternGroup(t *testing.T) {
	np, err := CompileNPattern([]byte(`(a)(b)`))
	if err != nil {
		t.Fatal(err)
	}
	if len(np.preds) != 1 || np.preds[0].group == nil {
		t.Fatalf("expected one group predicate, got %+v", np.preds)
	}
	if len(np.preds[0].group) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(np.preds[0].group))
	}
}

func TestCompileNPatternDefaultAxisMask(t *testing.T) {
	np, err := CompileNPattern([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	want := maskBit(AxisSelf) | maskBit(AxisDescendants)
	if np.axisMask != want {
		t.Fatalf("expected default self|descendants mask, got %v", np.axisMask)
	}
}
