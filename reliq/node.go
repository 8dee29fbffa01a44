package reliq

// Cstr is a byte span (pointer, length) into a Doc's data buffer. Spec.md §3.
type Cstr struct {
	Offset int
	Len    int
}

// Bytes slices data by the span. Callers must keep data alive; Cstr itself
// carries no reference (spec.md §9 "zero-copy: spans reference the
// original buffer by offset").
func (c Cstr) Bytes(data []byte) []byte {
	if c.Offset < 0 || c.Offset+c.Len > len(data) || c.Len < 0 {
		return nil
	}
	return data[c.Offset : c.Offset+c.Len]
}

func (c Cstr) String(data []byte) string {
	return string(c.Bytes(data))
}

func (c Cstr) Empty() bool { return c.Len == 0 }

// textKind is encoded into CNode.TagLen for text nodes (spec.md §3: "tag_len
// additionally encodes one of {normal text, empty text, error text}").
type textKind int

const (
	textNormal textKind = 0
	textEmpty  textKind = -1
	textError  textKind = -2
)

// CNode is the compact, flat node record of spec.md §3.
type CNode struct {
	AllOffset, AllLen         int
	TagOffset, TagLen         int // relative to AllOffset; TagLen carries textKind for text nodes
	InsidesOffset, InsidesLen int // relative to AllOffset
	AttribsIndex              int
	Lvl                       int
	TagCount, TextCount, CommentCount int
}

// NodeKind classifies a CNode, derived purely from its span layout
// (spec.md §3 "Node type is derived from the layout").
type NodeKind int

const (
	KindTag NodeKind = iota
	KindComment
	KindText
)

// Kind derives the node's kind from its layout, per spec.md §3.
func (n *CNode) Kind() NodeKind {
	if n.TagLen > 0 {
		return KindTag
	}
	if n.InsidesLen > 0 || n.InsidesOffset > 0 {
		return KindComment
	}
	return KindText
}

// TextKind returns whether a text node is normal, empty, or an error/garbage
// run; only meaningful when Kind() == KindText.
func (n *CNode) TextKind() textKind {
	return textKind(n.TagLen)
}

// All returns the node's full source span.
func (n *CNode) All() Cstr { return Cstr{n.AllOffset, n.AllLen} }

// Tag returns the tag-name span (zero-length for non-tag nodes).
func (n *CNode) Tag() Cstr {
	if n.Kind() != KindTag {
		return Cstr{}
	}
	return Cstr{n.AllOffset + n.TagOffset, n.TagLen}
}

// Insides returns the content span between the opening and closing tags
// (zero for void/self-closing nodes and for text nodes).
func (n *CNode) Insides() Cstr {
	return Cstr{n.AllOffset + n.InsidesOffset, n.InsidesLen}
}

// DescendantCount is the number of contiguous nodes immediately following
// this node that are its descendants (spec.md §3 invariant).
func (n *CNode) DescendantCount() int {
	return n.TagCount + n.TextCount + n.CommentCount
}

// CAttr is the compact, flat attribute record of spec.md §3.
type CAttr struct {
	KeyOffset, KeyLen     int
	ValueOffset, ValueLen int // ValueOffset relative to KeyOffset+KeyLen
}

func (a *CAttr) Key() Cstr { return Cstr{a.KeyOffset, a.KeyLen} }
func (a *CAttr) Value() Cstr {
	if a.ValueLen == 0 && a.ValueOffset == 0 {
		return Cstr{}
	}
	return Cstr{a.KeyOffset + a.KeyLen + a.ValueOffset, a.ValueLen}
}

// Doc owns the parsed representation of one HTML document: the raw bytes,
// the flat node array, and the flat attribute array (spec.md §3).
type Doc struct {
	Name   string // file path, or "-"/"" for stdin/buffer input
	Data   []byte
	Nodes  []CNode
	Attrib []CAttr

	url *DocURL // optional reference URL, see internal/extern contract
}

// DocURL is the external-collaborator contract for the reference URL
// (spec.md §6 "-u URL"); the real implementation (joining relative
// hrefs/srcs against it) lives in internal/extern and is out of core scope.
type DocURL struct {
	Raw string
}

// AttribsOf returns the attribute slice belonging to node i, using the
// "next node's attribs_index, or len(Attrib) for the last node" rule of
// spec.md §3.
func (d *Doc) AttribsOf(i int) []CAttr {
	if i < 0 || i >= len(d.Nodes) {
		return nil
	}
	start := d.Nodes[i].AttribsIndex
	end := len(d.Attrib)
	if i+1 < len(d.Nodes) {
		end = d.Nodes[i+1].AttribsIndex
	}
	if start > end || start < 0 || end > len(d.Attrib) {
		return nil
	}
	return d.Attrib[start:end]
}

// Descendants returns the index range [i+1, i+1+count) of node i's
// descendants.
func (d *Doc) Descendants(i int) (int, int) {
	if i < 0 || i >= len(d.Nodes) {
		return 0, 0
	}
	start := i + 1
	end := start + d.Nodes[i].DescendantCount()
	if end > len(d.Nodes) {
		end = len(d.Nodes)
	}
	return start, end
}

// Children returns the indices of node i's direct children (lvl == i.lvl+1),
// scanning its descendant range.
func (d *Doc) Children(i int) []int {
	start, end := d.Descendants(i)
	if start >= end {
		return nil
	}
	lvl := d.Nodes[i].Lvl + 1
	var out []int
	for j := start; j < end; j++ {
		if d.Nodes[j].Lvl == lvl {
			out = append(out, j)
		}
	}
	return out
}

// ParentOf returns the index of node i's parent, or -1 at the root.
func (d *Doc) ParentOf(i int) int {
	if i <= 0 || i >= len(d.Nodes) {
		return -1
	}
	lvl := d.Nodes[i].Lvl
	for j := i - 1; j >= 0; j-- {
		if d.Nodes[j].Lvl < lvl {
			return j
		}
	}
	return -1
}
