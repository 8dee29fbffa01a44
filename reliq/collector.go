package reliq

// The engine threads two deferred-formatter collectors alongside the
// compressed result vector (spec.md §4.7 glossary "ncollector / fcollector").

// ncollectorEntry records how many compressed handles belong to one
// completed sub-expression, and which expression (if any) supplies the
// per-node formatter for that span.
type ncollectorEntry struct {
	start, end int // [start, end) index range into the result vector
	format     string
	anchorLvl  int // level of the node whose parent is used for relative %-expansions
}

// fcollectorEntry records that the ncollector span [NStart,NEnd) should be
// wrapped by an expression formatter, plus its nesting depth among
// fcollectors (deepest wrappers apply first).
type fcollectorEntry struct {
	nStart, nEnd int
	format       string
	depth        int
}

// collectors is the bookkeeping state threaded through one engine
// invocation (spec.md §4.7).
type collectors struct {
	n []ncollectorEntry
	f []fcollectorEntry
}

func (c *collectors) pushN(start, end int, format string, anchorLvl int) {
	c.n = append(c.n, ncollectorEntry{start: start, end: end, format: format, anchorLvl: anchorLvl})
}

func (c *collectors) pushF(nStart, nEnd int, format string, depth int) {
	c.f = append(c.f, fcollectorEntry{nStart: nStart, nEnd: nEnd, format: format, depth: depth})
}

// rewind drops any ncollector/fcollector entries recorded after the given
// marks; used when a conditional branch is discarded (spec.md §4.7
// exec_block_conditional "rewind ncollector/fcollector").
func (c *collectors) rewind(nMark, fMark int) {
	c.n = c.n[:nMark]
	c.f = c.f[:fMark]
}

func (c *collectors) marks() (int, int) {
	return len(c.n), len(c.f)
}

// rearrange reorders fcollector siblings so that deeper wrappers (larger
// depth) within the same span come first, matching spec.md §4.7's
// "fcollector_rearrange reorders siblings so that deeper wrappers come
// first within a span". Ties (equal depth, same nStart) keep original
// (insertion) order — the source's edge case noted in spec.md §9's Open
// Questions ("fcollectors whose start coincides with their parent's")
// is resolved here by a stable sort, which is the conservative reading.
func (c *collectors) rearrange() {
	stableSortFcollectors(c.f)
}

func stableSortFcollectors(f []fcollectorEntry) {
	// insertion sort: stable, and f is expected to be small per invocation.
	for i := 1; i < len(f); i++ {
		j := i
		for j > 0 && fcollectorLess(f[j], f[j-1]) {
			f[j], f[j-1] = f[j-1], f[j]
			j--
		}
	}
}

func fcollectorLess(a, b fcollectorEntry) bool {
	if a.nStart != b.nStart {
		return a.nStart < b.nStart
	}
	return a.depth > b.depth
}
