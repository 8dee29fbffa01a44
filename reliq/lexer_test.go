package reliq

import "testing"

func tokenTypes(toks []token) []tokenType {
	var out []tokenType
	for _, t := range toks {
		out = append(out, t.typ)
	}
	return out
}

func TestTokenizeSimpleChain(t *testing.T) {
	toks, err := TokenizeExpr([]byte(`a; b | "%i\n"`))
	if err != nil {
		t.Fatal(err)
	}
	types := tokenTypes(toks)
	want := []tokenType{tokText, tokChainLink, tokText, tokNodeFormat, tokText, tokEOF}
	if !sameTypes(types, want) {
		t.Fatalf("got %v want %v", types, want)
	}
}

func TestTokenizeBlock(t *testing.T) {
	toks, err := TokenizeExpr([]byte(`{ a, b }`))
	if err != nil {
		t.Fatal(err)
	}
	types := tokenTypes(toks)
	want := []tokenType{tokBlockStart, tokText, tokNextNode, tokText, tokBlockEnd, tokEOF}
	if !sameTypes(types, want) {
		t.Fatalf("got %v want %v", types, want)
	}
}

func TestTokenizeConditionals(t *testing.T) {
	toks, err := TokenizeExpr([]byte(`a || b`))
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, tok := range toks {
		if tok.typ == tokCondOr {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a ConditionOr token")
	}
}

func TestTokenizeConditionAllFlag(t *testing.T) {
	toks, err := TokenizeExpr([]byte(`a ^&& b`))
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, tok := range toks {
		if tok.typ == tokCondAndAll && tok.all {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an all-flagged ConditionAndBlank token")
	}
}

func TestTokenizeSkipsQuotedDelimiters(t *testing.T) {
	toks, err := TokenizeExpr([]byte(`"a;b,c" | "%i"`))
	if err != nil {
		t.Fatal(err)
	}
	// the quoted string must not produce ChainLink/NextNode tokens
	for _, tok := range toks {
		if tok.typ == tokChainLink || tok.typ == tokNextNode {
			t.Fatalf("quoted text incorrectly split: %v", tok)
		}
	}
}

func TestTokenizeSkipsComments(t *testing.T) {
	toks, err := TokenizeExpr([]byte("a // comment\n; b"))
	if err != nil {
		t.Fatal(err)
	}
	types := tokenTypes(toks)
	want := []tokenType{tokText, tokChainLink, tokText, tokEOF}
	if !sameTypes(types, want) {
		t.Fatalf("got %v want %v", types, want)
	}
}

func sameTypes(a, b []tokenType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
