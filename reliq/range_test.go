package reliq

import "testing"

func TestRangeEquality(t *testing.T) {
	r, err := CompileRange([]byte("1"))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Match(1, 10) {
		t.Fatal("expected match at 1")
	}
	if r.Match(2, 10) {
		t.Fatal("expected no match at 2")
	}
}

func TestRangeClosed(t *testing.T) {
	r, err := CompileRange([]byte("2:5"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 2; i <= 5; i++ {
		if !r.Match(i, 10) {
			t.Fatalf("expected match at %d", i)
		}
	}
	if r.Match(6, 10) {
		t.Fatal("expected no match at 6")
	}
}

func TestRangeInvert(t *testing.T) {
	r, err := CompileRange([]byte("!0"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Match(0, 10) {
		t.Fatal("expected no match at 0")
	}
	if !r.Match(1, 10) {
		t.Fatal("expected match at 1")
	}
}

func TestRangeEmpty(t *testing.T) {
	r, err := CompileRange(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Match(0, 10) || !r.Match(999, 10) {
		t.Fatal("empty range should match everything")
	}
}

func TestRangeRelativeToEnd(t *testing.T) {
	r, err := CompileRange([]byte("-1"))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Match(9, 9) {
		t.Fatal("expected -1 to match the last index")
	}
	if r.Match(8, 9) {
		t.Fatal("expected -1 to not match a non-last index")
	}
}

func TestRangeStep(t *testing.T) {
	r, err := CompileRange([]byte("0:10:2"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 10; i += 2 {
		if !r.Match(i, 20) {
			t.Fatalf("expected match at %d", i)
		}
	}
	if r.Match(1, 20) {
		t.Fatal("expected no match at odd index")
	}
}
