package reliq

import "fmt"

// Range compiles "[a:b:c+d, ...]" numeric range expressions (spec.md §4.2).
// Evaluation is relative to `last` (the index of the last candidate, i.e.
// the size of the candidate set minus one);
// RangeUnsigned/RangeSigned sentinels mean "no relative end is known yet".
type Range struct {
	items []rangeItem
}

const (
	RangeUnsigned = -1 // "no relative end", unsigned context
	RangeSigned   = -2 // "no relative end", signed context
)

type rangeItem struct {
	invert bool

	// hasB is false for a bare equality test ("N").
	hasB bool
	a, b int // with relA/relB, a/b is N in "the candidate count minus N" (-1 is last)
	relA, relB bool
	bUnbounded bool // "N:-1" / "N:" form: open-ended

	hasStep bool
	step    int
	offset  int
}

// CompileRange parses the bracketed body (without the surrounding
// brackets) of a range expression.
func CompileRange(src []byte) (*Range, error) {
	r := &Range{}
	if len(src) == 0 {
		return r, nil // empty range matches everything
	}
	for _, part := range splitTopLevel(src, ',') {
		part = trimSpace(part)
		if len(part) == 0 {
			continue
		}
		item, err := parseRangeItem(part)
		if err != nil {
			return nil, err
		}
		r.items = append(r.items, item)
	}
	return r, nil
}

func splitTopLevel(src []byte, sep byte) [][]byte {
	var out [][]byte
	depth := 0
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, src[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, src[start:])
	return out
}

func parseRangeItem(b []byte) (rangeItem, error) {
	var it rangeItem
	if len(b) > 0 && b[0] == '!' {
		it.invert = true
		b = b[1:]
	}
	fields := splitTopLevel(b, ':')
	if len(fields) == 0 || len(fields[0]) == 0 {
		return it, fmt.Errorf("empty range item")
	}
	a, relA, err := parseRangeOperand(fields[0])
	if err != nil {
		return it, err
	}
	it.a, it.relA = a, relA
	if len(fields) == 1 {
		return it, nil
	}
	it.hasB = true
	if len(fields[1]) == 0 {
		it.bUnbounded = true
	} else {
		b2, relB, err := parseRangeOperand(fields[1])
		if err != nil {
			return it, err
		}
		it.b, it.relB = b2, relB
	}
	if len(fields) == 2 {
		return it, nil
	}
	it.hasStep = true
	stepField := fields[2]
	plus := indexByte(stepField, '+')
	if plus >= 0 {
		step, _, ok := parseInt(stepField[:plus])
		if !ok {
			return it, fmt.Errorf("bad step in range")
		}
		off, _, ok := parseInt(stepField[plus+1:])
		if !ok {
			return it, fmt.Errorf("bad step offset in range")
		}
		it.step, it.offset = step, off
	} else {
		step, _, ok := parseInt(stepField)
		if !ok {
			return it, fmt.Errorf("bad step in range")
		}
		it.step = step
	}
	return it, nil
}

// parseRangeOperand parses "[-]N", returning the magnitude and whether a
// leading '-' marked it as "relative to the total - N" (spec.md §4.2).
func parseRangeOperand(b []byte) (val int, relative bool, err error) {
	if len(b) > 0 && b[0] == '-' {
		v, n, ok := parseInt(b[1:])
		if !ok || n != len(b)-1 {
			return 0, false, fmt.Errorf("bad range operand %q", b)
		}
		return v, true, nil
	}
	v, n, ok := parseInt(b)
	if !ok || n != len(b) {
		return 0, false, fmt.Errorf("bad range operand %q", b)
	}
	return v, false, nil
}

// Match reports whether index i matches the range, given last (the size of
// the candidate set minus one, or RangeUnsigned/RangeSigned if unknown).
func (r *Range) Match(i, last int) bool {
	if r == nil || len(r.items) == 0 {
		return true
	}
	hasPlain := false
	for _, it := range r.items {
		if it.matches(i, last) {
			if it.invert {
				return false
			}
			return true
		}
		if !it.invert {
			hasPlain = true
		}
	}
	return !hasPlain
}

func (it rangeItem) resolve(v int, rel bool, last int) (int, bool) {
	if !rel {
		return v, true
	}
	if last < 0 {
		return 0, false // relative endpoint with unknown last: can't resolve
	}
	return last + 1 - v, true
}

func (it rangeItem) matches(i, last int) bool {
	a, ok := it.resolve(it.a, it.relA, last)
	if !ok {
		return false
	}
	if !it.hasB {
		return i == a
	}
	var b int
	if it.bUnbounded {
		if last < 0 {
			b = i // always satisfies upper bound
		} else {
			b = last
		}
	} else {
		var ok2 bool
		b, ok2 = it.resolve(it.b, it.relB, last)
		if !ok2 {
			return false
		}
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if i < lo || i > hi {
		return false
	}
	if !it.hasStep {
		return true
	}
	if it.step == 0 {
		return i == lo+it.offset
	}
	return mod(i+it.offset, it.step) == 0
}

func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// PredictMax returns the smallest upper bound such that all indices >= it
// definitely fail the predicate, or 0 when the range has relative
// endpoints preventing a static bound (spec.md §4.2 "predict_max").
func (r *Range) PredictMax() int {
	if r == nil || len(r.items) == 0 {
		return 0
	}
	max := 0
	for _, it := range r.items {
		if it.invert {
			return 0 // inversion can match arbitrarily far out
		}
		if it.relA || it.relB || it.bUnbounded {
			return 0
		}
		bound := it.a
		if it.hasB && it.b > bound {
			bound = it.b
		}
		bound++ // exclusive upper bound
		if bound > max {
			max = bound
		}
	}
	return max
}
