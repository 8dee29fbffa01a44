package reliq

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FieldDecl is an output field declaration (spec.md §3, §4.6, §6):
// `.name[.type[(args)]]*["annotation"]`.
//
// The type list is not an OR-alternation: original_source's fields.h lays
// reliq_output_field_type out with a single `subtype` pointer, i.e. a
// singly-linked chain. htmlq keeps that shape: each further type is
// written with its own '.' and becomes Type.Next. A '|' between types is
// rejected, so alternatives cannot be written. Only ShapeArray uses Next:
// it renders each array element through it (spec.md §3 "Array fields ...
// print each element through a subtype chain"); for every other type Next
// is ignored by Render.
type FieldDecl struct {
	Name       string
	Named      bool // false for the "protected unnamed form" (.)
	Type       *FieldType
	Annotation string
}

// FieldType is one link in a field's type chain.
type FieldType struct {
	Kind    ShapeKind
	Unknown string // set when Kind == ShapeUnknown: the opaque type name
	Args    []TypeArg
	Next    *FieldType

	// arrayFilter is compiled once at declaration time from the array
	// type's optional second argument: an expr-lang boolean expression
	// over `value` (the element's raw text) that keeps only the elements
	// it accepts, an enrichment over the base array type grounded on
	// chtml/typefuncs.go's CastFunction-style per-value predicates.
	arrayFilter *vm.Program
}

type argKind int

const (
	argString argKind = iota
	argSigned
	argUnsigned
	argFloat
)

type TypeArg struct {
	Kind argKind
	Str  string
	Int  int64
	Uint uint64
	Flt  float64
}

// CompileFieldDecl parses the declaration body following the leading '.'.
func CompileFieldDecl(src []byte) (*FieldDecl, error) {
	i := 0
	fd := &FieldDecl{}
	nameStart := i
	for i < len(src) && isNameChar(src[i]) {
		i++
	}
	if i > nameStart {
		fd.Name = string(src[nameStart:i])
		fd.Named = true
	}
	var head, tail *FieldType
	for i < len(src) && src[i] == '.' {
		i++
		ft, n, err := compileOneType(src[i:])
		if err != nil {
			return nil, err
		}
		i += n
		if head == nil {
			head, tail = ft, ft
		} else {
			tail.Next = ft
			tail = ft
		}
	}
	fd.Type = head
	rest := trimSpace(src[i:])
	if len(rest) > 0 && (rest[0] == '"' || rest[0] == '\'') {
		body, err := unquote(rest)
		if err != nil {
			return nil, err
		}
		fd.Annotation = string(UnescapeText(body))
	}
	return fd, nil
}

func compileOneType(src []byte) (*FieldType, int, error) {
	i := 0
	start := i
	for i < len(src) && isNameChar(src[i]) && src[i] != '|' {
		i++
	}
	name := string(src[start:i])
	ft := &FieldType{}
	if kind, ok := shapeLetters[name]; ok && len(name) == 1 {
		ft.Kind = kind
	} else {
		ft.Kind = ShapeUnknown
		ft.Unknown = name
	}
	if i < len(src) && src[i] == '(' {
		end := matchParen(src, i)
		if end < 0 {
			return nil, 0, fmt.Errorf("unterminated type argument list")
		}
		args, err := parseTypeArgs(src[i+1 : end])
		if err != nil {
			return nil, 0, err
		}
		ft.Args = args
		i = end + 1
	}
	if err := validateTypeArgs(ft); err != nil {
		return nil, 0, err
	}
	// CompileFieldDecl only continues the chain on '.', so a '|' after a type
	// is always a syntax error in this grammar.
	if i < len(src) && src[i] == '|' {
		return nil, 0, fmt.Errorf("type alternatives must each start with '.'")
	}
	return ft, i, nil
}

func matchParen(src []byte, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseTypeArgs(src []byte) ([]TypeArg, error) {
	var out []TypeArg
	for _, part := range splitTopLevel(src, ',') {
		part = trimSpace(part)
		if len(part) == 0 {
			continue
		}
		arg, err := parseTypeArg(part)
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
	}
	return out, nil
}

func parseTypeArg(b []byte) (TypeArg, error) {
	if b[0] == '"' || b[0] == '\'' {
		body, err := unquote(b)
		if err != nil {
			return TypeArg{}, err
		}
		return TypeArg{Kind: argString, Str: string(UnescapeText(body))}, nil
	}
	s := string(b)
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return TypeArg{Kind: argFloat, Flt: f}, nil
		}
	}
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return TypeArg{}, fmt.Errorf("bad type argument %q", s)
		}
		return TypeArg{Kind: argSigned, Int: v}, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return TypeArg{}, fmt.Errorf("bad type argument %q", s)
	}
	return TypeArg{Kind: argUnsigned, Uint: v}, nil
}

// validateTypeArgs runs the argument-count/kind validator for recognized
// builtin types (spec.md §4.6); unknown types accept (and ignore) any args.
func validateTypeArgs(ft *FieldType) error {
	switch ft.Kind {
	case ShapeString, ShapeInt, ShapeUint:
		if len(ft.Args) > 2 {
			return fmt.Errorf("%s type accepts at most 2 arguments (min, max)", ft.Kind)
		}
		for _, a := range ft.Args {
			if a.Kind == argString {
				return fmt.Errorf("%s type arguments must be numeric", ft.Kind)
			}
		}
	case ShapeNumber, ShapeBool, ShapeNull, ShapeEscaped:
		if len(ft.Args) != 0 {
			return fmt.Errorf("%s type accepts no arguments", ft.Kind)
		}
	case ShapeDate:
		if len(ft.Args) == 0 {
			return fmt.Errorf("date type requires at least one strftime-like pattern")
		}
		for _, a := range ft.Args {
			if a.Kind != argString {
				return fmt.Errorf("date type arguments must be quoted patterns")
			}
		}
	case ShapeURL:
		if len(ft.Args) > 1 {
			return fmt.Errorf("url type accepts at most 1 argument (base)")
		}
	case ShapeArray:
		if len(ft.Args) > 2 {
			return fmt.Errorf("array type accepts at most 2 arguments (delimiter, filter expr)")
		}
		if len(ft.Args) >= 1 {
			if ft.Args[0].Kind != argString || len(ft.Args[0].Str) != 1 {
				return fmt.Errorf("array delimiter must be a single character")
			}
		}
		if len(ft.Args) == 2 {
			if ft.Args[1].Kind != argString {
				return fmt.Errorf("array filter argument must be a quoted expression")
			}
			prog, err := expr.Compile(ft.Args[1].Str, expr.AsBool())
			if err != nil {
				return fmt.Errorf("array filter expression: %w", err)
			}
			ft.arrayFilter = prog
		}
	}
	return nil
}

// Render formats raw bytes according to the field's type chain, returning
// the final encoded text. The encoding is always JSON-style (strings are
// quoted and escaped), whichever output mode calls it.
func (ft *FieldType) Render(raw []byte) (string, error) {
	if ft == nil {
		return encodeJSONString(string(raw)), nil
	}
	switch ft.Kind {
	case ShapeString:
		return ft.renderString(raw)
	case ShapeNumber:
		return renderNumber(raw), nil
	case ShapeInt:
		return ft.renderInt(raw)
	case ShapeUint:
		return ft.renderUint(raw)
	case ShapeBool:
		return renderBool(raw), nil
	case ShapeDate:
		return ft.renderDate(raw)
	case ShapeURL:
		return ft.renderURL(raw), nil
	case ShapeArray:
		return ft.renderArray(raw)
	case ShapeNull:
		return "null", nil
	case ShapeEscaped:
		return encodeJSONString(string(raw)), nil
	default:
		return encodeJSONString(string(raw)), nil
	}
}

func (ft *FieldType) renderString(raw []byte) (string, error) {
	s := string(raw)
	if len(ft.Args) >= 1 {
		min := argInt(ft.Args[0])
		if len(s) < int(min) {
			return "", fmt.Errorf("string shorter than minimum length %d", min)
		}
	}
	if len(ft.Args) >= 2 {
		max := argInt(ft.Args[1])
		if int64(len(s)) > max {
			s = s[:max]
		}
	}
	return encodeJSONString(s), nil
}

func argInt(a TypeArg) int64 {
	switch a.Kind {
	case argSigned:
		return a.Int
	case argUnsigned:
		return int64(a.Uint)
	case argFloat:
		return int64(a.Flt)
	}
	return 0
}

func renderNumber(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "0"
	}
	return s
}

func (ft *FieldType) renderInt(raw []byte) (string, error) {
	v, _, ok := parseInt(trimSpace(raw))
	if !ok {
		v = 0
	}
	if len(ft.Args) >= 1 && int64(v) < argInt(ft.Args[0]) {
		v = int(argInt(ft.Args[0]))
	}
	if len(ft.Args) >= 2 && int64(v) > argInt(ft.Args[1]) {
		v = int(argInt(ft.Args[1]))
	}
	return strconv.Itoa(v), nil
}

func (ft *FieldType) renderUint(raw []byte) (string, error) {
	v, _, ok := parseUint(trimSpace(raw))
	if !ok {
		v = 0
	}
	if len(ft.Args) >= 1 {
		min := uint64(argInt(ft.Args[0]))
		if v < min {
			v = min
		}
	}
	if len(ft.Args) >= 2 {
		max := uint64(argInt(ft.Args[1]))
		if v > max {
			v = max
		}
	}
	return strconv.FormatUint(v, 10), nil
}

func renderBool(raw []byte) string {
	s := strings.ToLower(strings.TrimSpace(string(raw)))
	switch s {
	case "", "0", "false", "no", "n":
		return "false"
	default:
		return "true"
	}
}

// renderDate tries each strftime-like pattern argument in turn and emits
// ISO-8601 on the first one that parses fully (spec.md §6 "accepted iff
// any pattern parses fully, emitted as ISO-8601").
func (ft *FieldType) renderDate(raw []byte) (string, error) {
	s := strings.TrimSpace(string(raw))
	for _, a := range ft.Args {
		layout := strftimeToGoLayout(a.Str)
		if t, err := time.Parse(layout, s); err == nil {
			return encodeJSONString(t.Format(time.RFC3339)), nil
		}
	}
	return "", fmt.Errorf("date %q did not match any of %d pattern(s)", s, len(ft.Args))
}

// strftimeToGoLayout translates a small, common subset of strftime
// directives into a Go reference-time layout.
func strftimeToGoLayout(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '%' && i+1 < len(pattern) {
			switch pattern[i+1] {
			case 'Y':
				b.WriteString("2006")
			case 'm':
				b.WriteString("01")
			case 'd':
				b.WriteString("02")
			case 'H':
				b.WriteString("15")
			case 'M':
				b.WriteString("04")
			case 'S':
				b.WriteString("05")
			case 'y':
				b.WriteString("06")
			case 'b':
				b.WriteString("Jan")
			case 'B':
				b.WriteString("January")
			case 'Z':
				b.WriteString("MST")
			case 'z':
				b.WriteString("-0700")
			default:
				b.WriteByte(pattern[i+1])
			}
			i++
			continue
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}

// renderURL resolves raw (optionally against the base URL argument) and
// JSON-encodes the result. Full URL joining is the out-of-scope "URL
// parser/joiner" external collaborator (spec.md §1); this calls the thin
// contract in internal/extern via a package-level hook so reliq stays
// dependency-free of the CLI layer.
func (ft *FieldType) renderURL(raw []byte) string {
	s := string(raw)
	if len(ft.Args) == 1 && JoinURL != nil {
		s = JoinURL(ft.Args[0].Str, s)
	}
	return encodeJSONString(s)
}

// JoinURL is set by internal/extern at program startup; nil in tests
// (raw URL text is then passed through unresolved).
var JoinURL func(base, ref string) string

func (ft *FieldType) renderArray(raw []byte) (string, error) {
	delim := byte('\n')
	if len(ft.Args) >= 1 {
		delim = ft.Args[0].Str[0]
	}
	var parts [][]byte
	if len(raw) > 0 {
		parts = splitByte(raw, delim)
	}
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for _, p := range parts {
		keep, err := ft.acceptsElement(p)
		if err != nil {
			return "", err
		}
		if !keep {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		rendered, err := ft.Next.Render(p)
		if err != nil {
			return "", err
		}
		b.WriteString(rendered)
	}
	b.WriteByte(']')
	return b.String(), nil
}

// acceptsElement runs the array type's compiled filter expression (if any)
// against one element's raw text, bound as `value`.
func (ft *FieldType) acceptsElement(raw []byte) (bool, error) {
	if ft.arrayFilter == nil {
		return true, nil
	}
	out, err := expr.Run(ft.arrayFilter, map[string]any{"value": string(raw)})
	if err != nil {
		return false, fmt.Errorf("array filter expression: %w", err)
	}
	keep, _ := out.(bool)
	return keep, nil
}

func splitByte(b []byte, sep byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i < len(b); i++ {
		if b[i] == sep {
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	out = append(out, b[start:])
	return out
}

// encodeJSONString quotes s per spec.md §6: \b \t \n \f \r \" \\, and
// \u00XX for other control bytes < 0x20. Confirmed against
// original_source/src/fields.c's outfields_str_print substitution table:
// bytes are escaped byte-by-byte (not UTF-8-aware), bytes >= 0x20 pass
// through unescaped.
func encodeJSONString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\b':
			b.WriteString(`\b`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\f':
			b.WriteString(`\f`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20:
			fmt.Fprintf(&b, `\u%04x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
