package reliq

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderNodePrintf expands the node printf mini-language of spec.md §6
// against node idx, using parentIdx for the relative (%l, %p) directives;
// parentIdx may be -1.
func RenderNodePrintf(doc *Doc, idx, parentIdx int, format string) (string, error) {
	n := &doc.Nodes[idx]
	data := doc.Data
	var b strings.Builder
	untrim := false
	decode := false
	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(format) {
			b.WriteByte('%')
			break
		}
		spec := format[i]
		switch spec {
		case '%':
			b.WriteByte('%')
			i++
		case 'U':
			untrim = true
			i++
			continue
		case 'D':
			decode = true
			i++
			continue
		case 'n':
			b.WriteString(n.Tag().String(data))
			i++
		case 'i':
			s := n.Insides().String(data)
			if !untrim {
				s = string(trimSpace([]byte(s)))
			}
			b.WriteString(maybeDecode(s, decode))
			i++
		case 't':
			b.WriteString(maybeDecode(shallowText(doc, idx), decode))
			i++
		case 'T':
			b.WriteString(maybeDecode(recursiveText(doc, idx), decode))
			i++
		case 'a':
			b.WriteString(allAttrsString(doc, idx))
			i++
		case 'v':
			i++
			key := ""
			if i < len(format) && format[i] == '(' {
				end := indexByteStr(format[i:], ')')
				if end < 0 {
					return "", fmt.Errorf("unterminated %%v(...) directive")
				}
				key = format[i+1 : i+end]
				i += end + 1
			}
			b.WriteString(attrValue(doc, idx, key))
		case 'A':
			b.WriteString(n.All().String(data))
			i++
		case 'S':
			b.WriteString(startTagBytesDoc(n, data))
			i++
		case 'e':
			b.WriteString(string(trimSpace(endTagBytes(n, data))))
			i++
		case 'E':
			b.WriteString(string(endTagBytes(n, data)))
			i++
		case 'l':
			rel := n.Lvl
			if parentIdx >= 0 {
				rel = n.Lvl - doc.Nodes[parentIdx].Lvl
			}
			b.WriteString(strconv.Itoa(rel))
			i++
		case 'L':
			b.WriteString(strconv.Itoa(n.Lvl))
			i++
		case 's':
			b.WriteString(strconv.Itoa(n.AllLen))
			i++
		case 'c':
			b.WriteString(strconv.Itoa(len(doc.Children(idx))))
			i++
		case 'C':
			i++
			kind := byte('a')
			if i < len(format) && format[i] == '{' {
				end := indexByteStr(format[i:], '}')
				if end < 0 {
					return "", fmt.Errorf("unterminated %%C{...} directive")
				}
				arg := format[i+1 : i+end]
				if len(arg) > 0 {
					kind = arg[0]
				}
				i += end + 1
			}
			switch kind {
			case 't':
				b.WriteString(strconv.Itoa(n.TagCount))
			case 'c':
				b.WriteString(strconv.Itoa(n.CommentCount))
			default:
				b.WriteString(strconv.Itoa(n.DescendantCount()))
			}
		case 'p':
			rel := idx
			if parentIdx >= 0 {
				rel = idx - parentIdx
			}
			b.WriteString(strconv.Itoa(rel))
			i++
		case 'P':
			b.WriteString(strconv.Itoa(idx))
			i++
		case 'I':
			b.WriteString(strconv.Itoa(n.AllOffset))
			i++
		default:
			return "", fmt.Errorf("unknown printf directive %%%c", spec)
		}
		untrim, decode = false, false
	}
	return b.String(), nil
}

// RenderBufferPrintf expands the subset of the node printf mini-language
// that makes sense over a buffered span of already-rendered text rather
// than a single node (spec.md §4.7 "invoking its expression formatter
// over the buffered bytes", bound by the "/" operator). `%i` substitutes
// the buffer itself, `%U`/`%D` modify it the same way they modify `%i` for
// a node formatter, and `%%` is a literal percent. Directives that only
// make sense against a single node (`%n`, `%a`, `%v`, position/count
// directives, ...) have no meaning here and are rejected.
func RenderBufferPrintf(buf, format string) (string, error) {
	var b strings.Builder
	untrim := false
	decode := false
	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(format) {
			b.WriteByte('%')
			break
		}
		spec := format[i]
		switch spec {
		case '%':
			b.WriteByte('%')
			i++
		case 'U':
			untrim = true
			i++
			continue
		case 'D':
			decode = true
			i++
			continue
		case 'i':
			s := buf
			if !untrim {
				s = string(trimSpace([]byte(s)))
			}
			b.WriteString(maybeDecode(s, decode))
			i++
		default:
			return "", fmt.Errorf("printf directive %%%c has no meaning in an expression formatter", spec)
		}
		untrim, decode = false, false
	}
	return b.String(), nil
}

func maybeDecode(s string, decode bool) string {
	if !decode || DecodeEntities == nil {
		return s
	}
	return DecodeEntities(s)
}

// DecodeEntities is the external-collaborator hook for HTML entity
// decoding (spec.md §6 "%D decode entities"), wired by internal/extern.
var DecodeEntities func(string) string

func shallowText(doc *Doc, idx int) string {
	var b strings.Builder
	for _, c := range doc.Children(idx) {
		if doc.Nodes[c].Kind() == KindText {
			b.WriteString(doc.Nodes[c].All().String(doc.Data))
		}
	}
	return b.String()
}

func recursiveText(doc *Doc, idx int) string {
	var b strings.Builder
	start, end := doc.Descendants(idx)
	for i := start; i < end; i++ {
		if doc.Nodes[i].Kind() == KindText {
			b.WriteString(doc.Nodes[i].All().String(doc.Data))
		}
	}
	return b.String()
}

func allAttrsString(doc *Doc, idx int) string {
	var b strings.Builder
	for i, a := range doc.AttribsOf(idx) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.Key().String(doc.Data))
		if !a.Value().Empty() {
			b.WriteString(`="`)
			b.WriteString(a.Value().String(doc.Data))
			b.WriteByte('"')
		}
	}
	return b.String()
}

func attrValue(doc *Doc, idx int, key string) string {
	attrs := doc.AttribsOf(idx)
	if key == "" {
		if len(attrs) == 0 {
			return ""
		}
		return attrs[0].Value().String(doc.Data)
	}
	if n, err := strconv.Atoi(key); err == nil {
		if n < 0 || n >= len(attrs) {
			return ""
		}
		return attrs[n].Value().String(doc.Data)
	}
	for _, a := range attrs {
		if equalFold(a.Key().Bytes(doc.Data), []byte(key)) {
			return a.Value().String(doc.Data)
		}
	}
	return ""
}

func startTagBytesDoc(n *CNode, data []byte) string {
	return string(startTagBytes(n, data))
}

func indexByteStr(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
