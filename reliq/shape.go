package reliq

// ShapeKind enumerates the builtin output-field types of spec.md §4.6/§6.
// Adapted from the teacher's chtml/shape.go ShapeKind, which enumerated
// abstract value shapes (Any/Bool/String/Number/Array/Object/Html/HtmlAttr)
// for expr-lang's static checker; here the enumeration instead drives the
// typed rendering pipeline of the output engine, and unknown/opaque types
// fall back to ShapeString at output time (spec.md §4.6 "Unknown types are
// retained as opaque and fall back to string rendering").
type ShapeKind int

const (
	ShapeString ShapeKind = iota
	ShapeNumber
	ShapeInt
	ShapeUint
	ShapeBool
	ShapeDate
	ShapeURL
	ShapeArray
	ShapeNull
	ShapeEscaped
	ShapeUnknown
)

// shapeLetters maps the single-character type codes of spec.md §6 to a
// ShapeKind.
var shapeLetters = map[string]ShapeKind{
	"s": ShapeString,
	"n": ShapeNumber,
	"i": ShapeInt,
	"u": ShapeUint,
	"b": ShapeBool,
	"d": ShapeDate,
	"U": ShapeURL,
	"a": ShapeArray,
	"N": ShapeNull,
	"e": ShapeEscaped,
}

func (k ShapeKind) String() string {
	switch k {
	case ShapeString:
		return "string"
	case ShapeNumber:
		return "number"
	case ShapeInt:
		return "int"
	case ShapeUint:
		return "uint"
	case ShapeBool:
		return "bool"
	case ShapeDate:
		return "date"
	case ShapeURL:
		return "url"
	case ShapeArray:
		return "array"
	case ShapeNull:
		return "null"
	case ShapeEscaped:
		return "escaped"
	default:
		return "unknown"
	}
}
