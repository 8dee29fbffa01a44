package xmlcfg

import (
	"strings"
	"testing"
)

const sampleLibrary = `<queries>
  <query name="links">a .href{ %v(href) }</query>
  <query name="title">title | "%t\n"</query>
</queries>`

func TestLoadAndLookup(t *testing.T) {
	lib, err := Load(strings.NewReader(sampleLibrary))
	if err != nil {
		t.Fatal(err)
	}
	src, ok := lib.Lookup("title")
	if !ok || src != `title | "%t\n"` {
		t.Fatalf("got %q, ok=%v", src, ok)
	}
	if _, ok := lib.Lookup("missing"); ok {
		t.Fatal("expected missing query to not be found")
	}
}

func TestExpandSubstitutesInclude(t *testing.T) {
	lib, err := Load(strings.NewReader(sampleLibrary))
	if err != nil {
		t.Fatal(err)
	}
	out, err := lib.Expand(`#include title`)
	if err != nil {
		t.Fatal(err)
	}
	if out != `title | "%t\n"` {
		t.Fatalf("got %q", out)
	}
}

func TestExpandUnknownNameErrors(t *testing.T) {
	lib, err := Load(strings.NewReader(sampleLibrary))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Expand(`#include nope`); err == nil {
		t.Fatal("expected error for unknown include name")
	}
}

func TestExpandLeavesNonIncludeTextAlone(t *testing.T) {
	lib, err := Load(strings.NewReader(sampleLibrary))
	if err != nil {
		t.Fatal(err)
	}
	out, err := lib.Expand(`p | "%i\n"`)
	if err != nil {
		t.Fatal(err)
	}
	if out != `p | "%i\n"` {
		t.Fatalf("got %q", out)
	}
}
