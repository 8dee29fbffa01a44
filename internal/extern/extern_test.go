package extern

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecodeEntities(t *testing.T) {
	if got := DecodeEntities("a &amp; b"); got != "a & b" {
		t.Fatalf("got %q", got)
	}
}

func TestJoinURL(t *testing.T) {
	got := JoinURL("https://example.com/a/b", "../c")
	if got != "https://example.com/c" {
		t.Fatalf("got %q", got)
	}
}

func TestJoinURLInvalidBaseReturnsRef(t *testing.T) {
	got := JoinURL("://not a url", "c")
	if got != "c" {
		t.Fatalf("got %q", got)
	}
}

func TestFilterTrim(t *testing.T) {
	var b bytes.Buffer
	if err := Filters["trim"](&b, strings.NewReader("  hi \n"), nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "hi" {
		t.Fatalf("got %q", b.String())
	}
}

func TestFilterRev(t *testing.T) {
	var b bytes.Buffer
	if err := Filters["rev"](&b, strings.NewReader("abc"), nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "cba" {
		t.Fatalf("got %q", b.String())
	}
}

func TestFilterTac(t *testing.T) {
	var b bytes.Buffer
	if err := Filters["tac"](&b, strings.NewReader("1\n2\n3"), nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "3\n2\n1\n" {
		t.Fatalf("got %q", b.String())
	}
}

func TestFilterWC(t *testing.T) {
	var b bytes.Buffer
	if err := Filters["wc"](&b, strings.NewReader("hello"), nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "5\n" {
		t.Fatalf("got %q", b.String())
	}
}

func TestFilterPassthroughRegistered(t *testing.T) {
	for _, name := range []string{"sed", "tr", "cut", "sort", "uniq", "line", "encode"} {
		if _, ok := Filters[name]; !ok {
			t.Fatalf("expected %q to be registered", name)
		}
	}
}

func TestCtypeReexports(t *testing.T) {
	if !IsSpace(' ') || !IsDigit('5') || !IsAlpha('x') || !IsAlnum('9') {
		t.Fatal("ctype classifiers did not re-export correctly")
	}
}
