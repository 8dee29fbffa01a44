package reliq

import "strings"

// OutputMode selects raw or structured rendering (spec.md §4.8).
type OutputMode int

const (
	OutputRaw OutputMode = iota
	OutputStructured
)

// frameKind distinguishes the three structural roles a fieldFrame can
// play: the implicit top-level object, a nested `{...}` field block, a
// `[...]` array field, or a leaf field whose buffered text is rendered
// through its type chain when the frame closes.
type frameKind int

const (
	frameObject frameKind = iota
	frameArray
	frameLeaf
)

// fieldFrame is one open structured-output frame: the field it belongs
// to, its accumulated child text, and whether any child has been emitted
// yet (for comma placement).
type fieldFrame struct {
	field    *FieldDecl
	kind     frameKind
	children []string
	notempty bool
}

// Render walks the compressed result vector produced by Engine.Run and
// writes either raw node spans or a structured JSON-like document to sink
// (spec.md §4.8).
func Render(doc *Doc, result []handle, mode OutputMode, sink *Sink) error {
	switch mode {
	case OutputRaw:
		return renderRaw(doc, result, sink)
	default:
		out, err := renderStructured(doc, result)
		if err != nil {
			return err
		}
		_, err = sink.WriteString(out)
		return err
	}
}

// renderRaw prints each real node handle's `all` span followed by a
// newline, or its bound node formatter's expansion verbatim when the
// pattern that produced it carried one (spec.md §4.8 "Raw").
func renderRaw(doc *Doc, result []handle, sink *Sink) error {
	for _, h := range result {
		if h.kind == hkLiteral {
			if _, err := sink.WriteString(h.text); err != nil {
				return err
			}
			continue
		}
		if h.kind != hkNode {
			continue
		}
		if h.format != "" {
			s, err := RenderNodePrintf(doc, h.node, h.parent, h.format)
			if err != nil {
				return err
			}
			if _, err := sink.WriteString(s); err != nil {
				return err
			}
			continue
		}
		n := &doc.Nodes[h.node]
		if _, err := sink.WriteString(n.All().String(doc.Data)); err != nil {
			return err
		}
		if err := sink.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// RenderRawFormatted is like renderRaw but applies a bound node formatter
// to every handle (spec.md §4.8 "apply the bound node formatter").
func RenderRawFormatted(doc *Doc, result []handle, format string, sink *Sink) error {
	for _, h := range result {
		if h.kind != hkNode {
			continue
		}
		s, err := RenderNodePrintf(doc, h.node, h.parent, format)
		if err != nil {
			return err
		}
		if _, err := sink.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

// renderStructured drives a nested object/array builder off the
// structural marker handles (spec.md §4.8 "Structured").
func renderStructured(doc *Doc, result []handle) (string, error) {
	var stack []*fieldFrame
	root := &fieldFrame{}
	stack = append(stack, root)

	emit := func(text string) {
		top := stack[len(stack)-1]
		top.children = append(top.children, text)
		top.notempty = true
	}

	for _, h := range result {
		switch h.kind {
		case hkLiteral:
			emit(h.text)
		case hkNode:
			if h.format != "" {
				s, err := RenderNodePrintf(doc, h.node, h.parent, h.format)
				if err != nil {
					return "", err
				}
				emit(s)
				continue
			}
			emit(doc.Nodes[h.node].All().String(doc.Data))
		case hkArrayStart:
			stack = append(stack, &fieldFrame{field: h.field, kind: frameArray})
		case hkBlockStart, hkNoFieldsBlockStart:
			stack = append(stack, &fieldFrame{field: h.field, kind: frameObject})
		case hkFieldNamed, hkFieldUnnamed:
			stack = append(stack, &fieldFrame{field: h.field, kind: frameLeaf})
		case hkBlockEnd:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			rendered, err := renderFrame(top)
			if err != nil {
				return "", err
			}
			emitNamed(stack[len(stack)-1], top.field, rendered)
		}
	}
	if len(root.children) == 1 {
		return root.children[0], nil
	}
	return strings.Join(root.children, ","), nil
}

func emitNamed(parent *fieldFrame, field *FieldDecl, rendered string) {
	parent.notempty = true
	if field != nil && field.Named {
		parent.children = append(parent.children, encodeJSONString(field.Name)+":"+rendered)
	} else {
		parent.children = append(parent.children, rendered)
	}
}

// renderFrame closes a structured field. Object/array frames wrap their
// already-rendered children in `{...}`/`[...]`; leaf frames concatenate
// buffered raw node text and apply the field's type chain, falling back
// to the type's default/null rendering when nothing matched (spec.md
// §4.8 "a missing match leaves notempty=false ... falls back to the
// field type's default value").
func renderFrame(f *fieldFrame) (string, error) {
	switch f.kind {
	case frameObject:
		return "{" + strings.Join(f.children, ",") + "}", nil
	case frameArray:
		// Array frames buffer each element's raw rendered text and replay
		// it through the array field's own type chain, so the delimiter
		// split and optional filter expression in FieldType.renderArray
		// (spec.md §3 array type) run exactly as they would over a single
		// matched node's delimited text.
		delim := byte('\n')
		if len(f.field.Type.Args) >= 1 && f.field.Type.Args[0].Str != "" {
			delim = f.field.Type.Args[0].Str[0]
		}
		return f.field.Type.Render([]byte(strings.Join(f.children, string(delim))))
	default:
		if !f.notempty {
			if f.field.Type != nil {
				if def, err := f.field.Type.Render(nil); err == nil {
					return def, nil
				}
			}
			return "null", nil
		}
		raw := strings.Join(f.children, "")
		return f.field.Type.Render([]byte(raw))
	}
}
