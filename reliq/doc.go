package reliq

import (
	"fmt"

	rhtml "github.com/dpotapov/htmlq/reliq/html"
)

// ParseOptions mirrors reliq/html.Options plus the reference URL of
// spec.md §6 ("-u URL"), forming the Doc construction contract.
type ParseOptions struct {
	PHPTags    bool
	Autoclose  bool
	SmallStack bool
	URL        string
}

// DefaultParseOptions matches the worked examples of spec.md §8 (autoclose
// on, PHP tags off).
func DefaultParseOptions() ParseOptions {
	return ParseOptions{Autoclose: true}
}

// ParseDoc builds a Doc from data, per spec.md §4.1. name is stored as
// given in Doc.Name; it is not put into the returned errors.
func ParseDoc(name string, data []byte, opt ParseOptions) (*Doc, error) {
	nodes, attrs, err := rhtml.Parse(data, rhtml.Options{
		PHPTags:    opt.PHPTags,
		Autoclose:  opt.Autoclose,
		SmallStack: opt.SmallStack,
	})
	if err != nil {
		var de *rhtml.ErrDepthExceeded
		if ok := asDepthExceeded(err, &de); ok {
			return nil, newHTMLError(data, de.Offset, "%s", ErrDepthExceeded.Error())
		}
		return nil, &SystemError{Path: name, Err: err}
	}

	doc := &Doc{Name: name, Data: data}
	doc.Nodes = make([]CNode, len(nodes))
	for i, n := range nodes {
		doc.Nodes[i] = CNode{
			AllOffset: n.AllOffset, AllLen: n.AllLen,
			TagOffset: n.TagOffset, TagLen: n.TagLen,
			InsidesOffset: n.InsidesOffset, InsidesLen: n.InsidesLen,
			AttribsIndex: n.AttribsIndex,
			Lvl:          n.Lvl,
			TagCount:     n.TagCount, TextCount: n.TextCount, CommentCount: n.CommentCount,
		}
	}
	doc.Attrib = make([]CAttr, len(attrs))
	for i, a := range attrs {
		doc.Attrib[i] = CAttr{
			KeyOffset: a.KeyOffset, KeyLen: a.KeyLen,
			ValueOffset: a.ValueOffset, ValueLen: a.ValueLen,
		}
	}
	if opt.URL != "" {
		doc.url = &DocURL{Raw: opt.URL}
	}
	return doc, nil
}

func asDepthExceeded(err error, target **rhtml.ErrDepthExceeded) bool {
	if de, ok := err.(*rhtml.ErrDepthExceeded); ok {
		*target = de
		return true
	}
	return false
}

// String renders a short human summary, handy in logs (log/slog's
// structured attrs read this via fmt.Stringer).
func (d *Doc) String() string {
	return fmt.Sprintf("Doc(%s, %d nodes, %d attrs)", d.Name, len(d.Nodes), len(d.Attrib))
}
