package reliq

import (
	"fmt"
	"regexp"
	"strings"
)

// matchKind selects how the pattern body is compared against the subject
// (spec.md §4.3).
type matchKind int

const (
	matchContains matchKind = iota // 'a'
	matchFull                      // 'f'
	matchBegin                     // 'b'
	matchEnd                       // 'e'
)

type patternType int

const (
	patternString patternType = iota
	patternBRE
	patternERE
)

// Pattern compiles a string match with the flag grammar of spec.md §4.3.
type Pattern struct {
	trim, caseInsensitive, invert, whole bool
	kind                                 matchKind
	typ                                  patternType
	universal                            bool
	empty                                bool
	rng                                  *Range
	body                                 []byte // unescaped literal body, or regex source
	re                                   *regexp.Regexp
}

// CompilePattern parses "<flags>[range]body" or "<flags>[range]*". body is
// the bytes between (and including) the outer quote characters, or a bare
// "*" for universal match.
func CompilePattern(src []byte) (*Pattern, error) {
	p := &Pattern{}
	i := 0
	if i < len(src) && src[i] == '<' {
		end := indexByte(src[i:], '>')
		if end < 0 {
			return nil, fmt.Errorf("unterminated flag prefix")
		}
		if err := p.applyFlags(src[i+1 : i+end]); err != nil {
			return nil, err
		}
		i += end + 1
	}
	if i < len(src) && src[i] == '[' {
		end := indexByte(src[i:], ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated range in pattern")
		}
		r, err := CompileRange(src[i+1 : i+end])
		if err != nil {
			return nil, err
		}
		p.rng = r
		i += end + 1
	}
	rest := src[i:]
	if len(rest) == 1 && rest[0] == '*' {
		p.universal = true
		return p, nil
	}
	body, err := unquote(rest)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		p.empty = true
	}
	p.body = UnescapeText(body)
	if p.typ != patternString {
		if err := p.compileRegex(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func unquote(b []byte) ([]byte, error) {
	if len(b) < 2 {
		return nil, fmt.Errorf("pattern body must be quoted")
	}
	q := b[0]
	if q != '"' && q != '\'' {
		return nil, fmt.Errorf("pattern body must be quoted")
	}
	if b[len(b)-1] != q {
		return nil, fmt.Errorf("unterminated quoted pattern")
	}
	return b[1 : len(b)-1], nil
}

func (p *Pattern) applyFlags(flags []byte) error {
	for _, c := range flags {
		switch c {
		case 't', 'u':
			p.trim = c == 't'
		case 'i', 'c':
			p.caseInsensitive = c == 'i'
		case 'v', 'n':
			p.invert = c == 'v'
		case 'a':
			p.kind = matchContains
		case 'f':
			p.kind = matchFull
		case 'b':
			p.kind = matchBegin
		case 'e':
			p.kind = matchEnd
		case 'W':
			p.whole = true
		case 'w':
			p.whole = false
		case 's':
			p.typ = patternString
		case 'B':
			p.typ = patternBRE
		case 'E':
			p.typ = patternERE
		default:
			return fmt.Errorf("unknown pattern flag %q", string(c))
		}
	}
	return nil
}

func (p *Pattern) compileRegex() error {
	anchored := anchorRegex(string(p.body), p.kind)
	goSyntax := anchored
	if p.typ == patternBRE {
		goSyntax = breToERE(anchored)
	}
	if p.caseInsensitive {
		goSyntax = "(?i)" + goSyntax
	}
	re, err := regexp.Compile(goSyntax)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %w", err)
	}
	p.re = re
	return nil
}

// anchorRegex converts a match-kind into ^...$, ^..., or ...$ anchors
// (spec.md §4.3).
func anchorRegex(body string, kind matchKind) string {
	switch kind {
	case matchFull:
		return "^(?:" + body + ")$"
	case matchBegin:
		return "^(?:" + body + ")"
	case matchEnd:
		return "(?:" + body + ")$"
	default:
		return body
	}
}

// breToERE translates a small, common subset of POSIX Basic Regular
// Expression syntax (\( \) \{ \} \| as grouping/alternation metacharacters,
// literal ( ) { } |) into Go's RE2/ERE-flavored syntax. Grounded on
// DESIGN.md's decision to use the standard library regexp package rather
// than adopt an unwired third-party engine (see DESIGN.md "pattern.go").
func breToERE(body string) string {
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			next := body[i+1]
			switch next {
			case '(', ')', '{', '}', '|', '+', '?':
				b.WriteByte(next)
				i++
				continue
			default:
				b.WriteByte(c)
				b.WriteByte(next)
				i++
				continue
			}
		}
		switch c {
		case '(', ')', '{', '}', '|', '+', '?':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Match tests subject against the compiled pattern (spec.md §4.3).
func (p *Pattern) Match(subject []byte) bool {
	if p == nil {
		return true
	}
	if p.rng != nil && !p.rng.Match(len(subject), RangeUnsigned) {
		return p.invert
	}
	if p.universal {
		return true != p.invert // XOR invert, universal is always true
	}
	if p.whole {
		for _, w := range splitFields(subject) {
			if p.matchOne(w) {
				return true != p.invert
			}
		}
		return false != p.invert
	}
	s := subject
	if p.trim {
		s = trimSpace(s)
	}
	return p.matchOne(s) != p.invert
}

func (p *Pattern) matchOne(s []byte) bool {
	if p.empty {
		return len(s) == 0
	}
	if p.typ != patternString {
		return p.re.Match(s)
	}
	switch p.kind {
	case matchFull:
		if p.caseInsensitive {
			return equalFold(s, p.body)
		}
		return string(s) == string(p.body)
	case matchBegin:
		return hasPrefixFold(s, p.body, p.caseInsensitive)
	case matchEnd:
		return hasSuffixFold(s, p.body, p.caseInsensitive)
	default: // contains
		return containsFold(s, p.body, p.caseInsensitive)
	}
}

func hasPrefixFold(s, prefix []byte, fold bool) bool {
	if len(prefix) > len(s) {
		return false
	}
	if fold {
		return equalFold(s[:len(prefix)], prefix)
	}
	return string(s[:len(prefix)]) == string(prefix)
}

func hasSuffixFold(s, suffix []byte, fold bool) bool {
	if len(suffix) > len(s) {
		return false
	}
	if fold {
		return equalFold(s[len(s)-len(suffix):], suffix)
	}
	return string(s[len(s)-len(suffix):]) == string(suffix)
}

func containsFold(s, sub []byte, fold bool) bool {
	if len(sub) == 0 {
		return true
	}
	if !fold {
		return strings.Contains(string(s), string(sub))
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if equalFold(s[i:i+len(sub)], sub) {
			return true
		}
	}
	return false
}
