package reliq

import "testing"

func TestFieldDeclSimpleString(t *testing.T) {
	fd, err := CompileFieldDecl([]byte(`title.s`))
	if err != nil {
		t.Fatal(err)
	}
	if fd.Name != "title" || fd.Type.Kind != ShapeString {
		t.Fatalf("unexpected decl: %+v", fd)
	}
	out, err := fd.Type.Render([]byte(`he said "hi"`))
	if err != nil {
		t.Fatal(err)
	}
	if out != `"he said \"hi\""` {
		t.Fatalf("got %q", out)
	}
}

func TestFieldDeclArraySubtype(t *testing.T) {
	fd, err := CompileFieldDecl([]byte(`tags.a.s`))
	if err != nil {
		t.Fatal(err)
	}
	if fd.Type.Kind != ShapeArray || fd.Type.Next == nil || fd.Type.Next.Kind != ShapeString {
		t.Fatalf("expected array-of-string chain, got %+v", fd.Type)
	}
	out, err := fd.Type.Render([]byte("a\nb\nc"))
	if err != nil {
		t.Fatal(err)
	}
	if out != `["a","b","c"]` {
		t.Fatalf("got %q", out)
	}
}

func TestFieldDeclArrayCustomDelim(t *testing.T) {
	fd, err := CompileFieldDecl([]byte(`tags.a(",").s`))
	if err != nil {
		t.Fatal(err)
	}
	out, err := fd.Type.Render([]byte("a,b,c"))
	if err != nil {
		t.Fatal(err)
	}
	if out != `["a","b","c"]` {
		t.Fatalf("got %q", out)
	}
}

func TestFieldDeclArrayFilterExpr(t *testing.T) {
	fd, err := CompileFieldDecl([]byte(`tags.a(",", "len(value) > 1").s`))
	if err != nil {
		t.Fatal(err)
	}
	out, err := fd.Type.Render([]byte("a,bb,c,ddd"))
	if err != nil {
		t.Fatal(err)
	}
	if out != `["bb","ddd"]` {
		t.Fatalf("got %q", out)
	}
}

func TestFieldDeclArrayFilterExprRejectsNonString(t *testing.T) {
	if _, err := CompileFieldDecl([]byte(`tags.a(",", 5).s`)); err == nil {
		t.Fatal("expected error for non-string filter argument")
	}
}

func TestFieldDeclIntBounds(t *testing.T) {
	fd, err := CompileFieldDecl([]byte(`n.i(0,10)`))
	if err != nil {
		t.Fatal(err)
	}
	out, err := fd.Type.Render([]byte("99"))
	if err != nil {
		t.Fatal(err)
	}
	if out != "10" {
		t.Fatalf("expected clamp to 10, got %q", out)
	}
}

func TestFieldDeclBool(t *testing.T) {
	fd, err := CompileFieldDecl([]byte(`ok.b`))
	if err != nil {
		t.Fatal(err)
	}
	if out, _ := fd.Type.Render([]byte("")); out != "false" {
		t.Fatalf("expected false, got %q", out)
	}
	if out, _ := fd.Type.Render([]byte("yes")); out != "true" {
		t.Fatalf("expected true, got %q", out)
	}
}

func TestFieldDeclUnnamed(t *testing.T) {
	fd, err := CompileFieldDecl([]byte(`.s`))
	if err != nil {
		t.Fatal(err)
	}
	if fd.Named {
		t.Fatal("expected unnamed field")
	}
}

func TestFieldDeclAnnotation(t *testing.T) {
	fd, err := CompileFieldDecl([]byte(`title.s "page title"`))
	if err != nil {
		t.Fatal(err)
	}
	if fd.Annotation != "page title" {
		t.Fatalf("got %q", fd.Annotation)
	}
}

func TestEncodeJSONStringControlBytes(t *testing.T) {
	// bytes < 0x20 get \u-escaped; DEL (0x7f) passes through unescaped
	// under this table, matching original_source's outfields_str_print.
	out := encodeJSONString("\x01\x7f")
	want := "\"\\u0001\x7f\""
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}
}
