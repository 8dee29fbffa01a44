package reliq

import (
	"strings"
	"testing"
)

// buildDocFromFlatHTML is a minimal, test-only flat-array builder for
// small literal HTML fixtures, used where exercising the real tokenizer
// would obscure what's under test (engine/output behavior, not parsing).
func buildDocFromFlatHTML(data string, nodes []CNode) *Doc {
	return &Doc{Data: []byte(data), Nodes: nodes}
}

func TestEndToEndRawNodeFormat(t *testing.T) {
	data := "<a>1</a><a>2</a>"
	doc := buildDocFromFlatHTML(data, []CNode{
		{AllOffset: 0, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 0},
		{AllOffset: 8, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 0},
	})
	root, err := CompileExpr([]byte(`a | "%i\n"`))
	if err != nil {
		t.Fatal(err)
	}
	eng := NewEngine(doc)
	result, err := eng.Run(root)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for _, h := range result {
		if h.kind != hkNode {
			continue
		}
		s, err := RenderNodePrintf(doc, h.node, h.parent, "%i\n")
		if err != nil {
			t.Fatal(err)
		}
		b.WriteString(s)
	}
	if b.String() != "1\n2\n" {
		t.Fatalf("got %q", b.String())
	}
}

func TestEndToEndPositionRange(t *testing.T) {
	// <div><p>1</p><p>2</p><p>3</p></div>, expression `p [1] | "%i\n"`
	data := `<div><p>1</p><p>2</p><p>3</p></div>`
	doc := buildDocFromFlatHTML(data, []CNode{
		{AllOffset: 0, AllLen: len(data), TagOffset: 1, TagLen: 3, InsidesOffset: 5, InsidesLen: len(data) - 5 - 6, Lvl: 0, TagCount: 3},
		{AllOffset: 5, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 1},
		{AllOffset: 13, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 1},
		{AllOffset: 21, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 1},
	})
	root, err := CompileExpr([]byte(`p [1] | "%i\n"`))
	if err != nil {
		t.Fatal(err)
	}
	eng := NewEngine(doc)
	result, err := eng.Run(root)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, h := range result {
		if h.kind != hkNode {
			continue
		}
		s, err := RenderNodePrintf(doc, h.node, h.parent, "%i\n")
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, s)
	}
	if len(got) != 1 || got[0] != "2\n" {
		t.Fatalf("got %v, want [\"2\\n\"]", got)
	}
}

func TestEndToEndStructuredArray(t *testing.T) {
	// <a>1</a><a>2</a>, expression `.items.a{ a | "%i" }`
	data := "<a>1</a><a>2</a>"
	doc := buildDocFromFlatHTML(data, []CNode{
		{AllOffset: 0, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 0},
		{AllOffset: 8, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 0},
	})
	root, err := CompileExpr([]byte(`.items.a{ a | "%i" }`))
	if err != nil {
		t.Fatal(err)
	}
	eng := NewEngine(doc)
	result, err := eng.Run(root)
	if err != nil {
		t.Fatal(err)
	}
	out, err := renderStructured(doc, result)
	if err != nil {
		t.Fatal(err)
	}
	if out != `"items":["1","2"]` {
		t.Fatalf("got %q", out)
	}
}

func TestEndToEndStructuredArrayAppliesFilter(t *testing.T) {
	// <a>1</a><a>22</a><a>3</a>, with an array field whose second type
	// argument filters out single-digit elements. The field is built via
	// CompileFieldDecl directly (its own argument parser, not the query
	// tokenizer, since a quoted-argument comma inside the query text would
	// otherwise lex as a Block's NextNode separator) and wired into a hand
	// built ExprNode tree, exercising the same execField/renderStructured
	// path a parsed query would use.
	data := "<a>1</a><a>22</a><a>3</a>"
	doc := buildDocFromFlatHTML(data, []CNode{
		{AllOffset: 0, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 0},
		{AllOffset: 8, AllLen: 10, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 2, Lvl: 0},
		{AllOffset: 18, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 0},
	})
	fd, err := CompileFieldDecl([]byte(`items.a("` + "\n" + `", "len(value) > 1")`))
	if err != nil {
		t.Fatal(err)
	}
	pattern, err := CompileNPattern([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	patternNode := &ExprNode{Pattern: pattern, NodeFormat: "%i"}
	root := &ExprNode{Field: fd, ChildFields: 1, Block: []*ExprNode{patternNode}}

	eng := NewEngine(doc)
	result, err := eng.Run(root)
	if err != nil {
		t.Fatal(err)
	}
	out, err := renderStructured(doc, result)
	if err != nil {
		t.Fatal(err)
	}
	if out != `"items":["22"]` {
		t.Fatalf("got %q, want only the filtered-in element", out)
	}
}

func TestEndToEndExprFormatWrapsBlockOutput(t *testing.T) {
	// <a>1</a><a>2</a>, a bound "/" formatter over a Block whose pattern
	// carries its own "|" node formatter: applyExprFormat concatenates each
	// already-node-formatted handle before running the block's own
	// formatter over the result.
	data := "<a>1</a><a>2</a>"
	doc := buildDocFromFlatHTML(data, []CNode{
		{AllOffset: 0, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 0},
		{AllOffset: 8, AllLen: 8, TagOffset: 1, TagLen: 1, InsidesOffset: 3, InsidesLen: 1, Lvl: 0},
	})
	root, err := CompileExpr([]byte(`{ a | "%i" } / "[%i]"`))
	if err != nil {
		t.Fatal(err)
	}
	eng := NewEngine(doc)
	result, err := eng.Run(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 || result[0].kind != hkLiteral {
		t.Fatalf("got %+v, want a single literal handle", result)
	}
	if result[0].text != "[12]" {
		t.Fatalf("got %q", result[0].text)
	}
}
