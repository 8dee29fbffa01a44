package reliq

import "testing"

func TestCompileExprSinglePattern(t *testing.T) {
	n, err := CompileExpr([]byte(`a`))
	if err != nil {
		t.Fatal(err)
	}
	if n.Pattern == nil {
		t.Fatalf("expected a bare NPattern node, got %+v", n)
	}
}

func TestCompileExprNodeFormat(t *testing.T) {
	n, err := CompileExpr([]byte(`a | "%i\n"`))
	if err != nil {
		t.Fatal(err)
	}
	if n.Pattern == nil || n.NodeFormat == "" {
		t.Fatalf("expected pattern with bound node format, got %+v", n)
	}
}

func TestCompileExprChain(t *testing.T) {
	n, err := CompileExpr([]byte(`a; b`))
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Chain) != 2 {
		t.Fatalf("expected a 2-element chain, got %+v", n)
	}
}

func TestCompileExprBlock(t *testing.T) {
	n, err := CompileExpr([]byte(`a, b`))
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Block) != 2 {
		t.Fatalf("expected a 2-element block, got %+v", n)
	}
}

func TestCompileExprNestedBlock(t *testing.T) {
	n, err := CompileExpr([]byte(`a; { b, c }`))
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Chain) != 2 {
		t.Fatalf("expected a 2-element chain, got %+v", n)
	}
	if len(n.Chain[1].Block) != 2 {
		t.Fatalf("expected nested block with 2 children, got %+v", n.Chain[1])
	}
}

func TestCompileExprSingular(t *testing.T) {
	n, err := CompileExpr([]byte(`{ a } | "%n\n"`))
	if err != nil {
		t.Fatal(err)
	}
	if !n.Singular {
		t.Fatalf("expected a Singular node, got %+v", n)
	}
}

func TestCompileExprOutputField(t *testing.T) {
	// Field-scoped sub-blocks use '{' '}' uniformly (see DESIGN.md: '['
	// '...' ']' is reserved for position ranges inside pattern text).
	n, err := CompileExpr([]byte(`.items{ a | "%i" }`))
	if err != nil {
		t.Fatal(err)
	}
	if n.Field == nil || n.Field.Name != "items" {
		t.Fatalf("expected an output field named 'items', got %+v", n)
	}
}

func TestCompileExprConditionalOr(t *testing.T) {
	n, err := CompileExpr([]byte(`a || b`))
	if err != nil {
		t.Fatal(err)
	}
	if len(n.CondChains) != 2 || n.CondKind != condOr {
		t.Fatalf("expected a 2-chain ConditionOr, got %+v", n)
	}
}

func TestCompileExprRejectsFieldInConditional(t *testing.T) {
	_, err := CompileExpr([]byte(`.x || b`))
	if err == nil {
		t.Fatal("expected an error for a field inside a conditional")
	}
}
