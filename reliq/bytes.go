package reliq

import "unicode/utf8"

// Byte utilities (spec.md §2 "Byte utilities", §6 escape sequences). These
// are the leaves-first layer everything else in the package builds on:
// classifier tables, backslash/entity escape decoding, integer parsing, and
// UTF-8 encoding. There is no corpus example of a bespoke ctype table, so
// this is plain Go using only unicode/utf8 from the standard library, the
// way the teacher's own
// chtml/attr_scanner.go hand-rolls its own isAttrSpace rather than reaching
// for unicode.IsSpace (ASCII-only, byte-oriented, matching spec.md's
// byte-span data model).

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func isNameChar(c byte) bool {
	return isAlnum(c) || c == '-' || c == '_' || c == ':'
}

// IsSpace, IsDigit, IsAlpha, and IsAlnum export the byte classifier tables
// above for internal/extern's post-filter family (tr/cut-style character
// classes), so that layer doesn't hand-roll a second copy.
func IsSpace(c byte) bool { return isSpace(c) }
func IsDigit(c byte) bool { return isDigit(c) }
func IsAlpha(c byte) bool { return isAlpha(c) }
func IsAlnum(c byte) bool { return isAlnum(c) }

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// equalFold reports whether a and b are equal, ASCII case-insensitively.
func equalFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if toLower(a[i]) != toLower(b[i]) {
			return false
		}
	}
	return true
}

func trimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

// splitFields tokenizes b by runs of whitespace, like strings.Fields but for
// a byte slice with no allocation of the input.
func splitFields(b []byte) [][]byte {
	var out [][]byte
	i := 0
	for i < len(b) {
		for i < len(b) && isSpace(b[i]) {
			i++
		}
		start := i
		for i < len(b) && !isSpace(b[i]) {
			i++
		}
		if i > start {
			out = append(out, b[start:i])
		}
	}
	return out
}

// parseInt parses a signed decimal integer from the prefix of b, returning
// the parsed value and the number of bytes consumed. ok is false if no
// digits were found.
func parseInt(b []byte) (v int, n int, ok bool) {
	i := 0
	neg := false
	if i < len(b) && (b[i] == '-' || b[i] == '+') {
		neg = b[i] == '-'
		i++
	}
	start := i
	for i < len(b) && isDigit(b[i]) {
		v = v*10 + int(b[i]-'0')
		i++
	}
	if i == start {
		return 0, 0, false
	}
	if neg {
		v = -v
	}
	return v, i, true
}

// parseUint parses an unsigned decimal integer from the prefix of b.
func parseUint(b []byte) (v uint64, n int, ok bool) {
	i := 0
	for i < len(b) && isDigit(b[i]) {
		v = v*10 + uint64(b[i]-'0')
		i++
	}
	return v, i, i > 0
}

// decodeEscape decodes one backslash escape at the start of b (b[0] must be
// '\\'), per spec.md §6: \\, \{, \}, \,, \;, \", \', \n, \t, \r, \xHH,
// \uHHHH, \UHHHHHHHH, \oOOO. Returns the decoded rune(s) UTF-8 encoded, and
// the number of input bytes consumed (including the backslash).
func decodeEscape(b []byte) (decoded []byte, n int) {
	if len(b) < 2 || b[0] != '\\' {
		return nil, 0
	}
	switch b[1] {
	case '\\', '{', '}', ',', ';', '"', '\'':
		return []byte{b[1]}, 2
	case 'n':
		return []byte{'\n'}, 2
	case 't':
		return []byte{'\t'}, 2
	case 'r':
		return []byte{'\r'}, 2
	case 'x':
		if len(b) >= 4 {
			if v, ok := hexVal(b[2:4]); ok {
				return []byte{byte(v)}, 4
			}
		}
	case 'u':
		if len(b) >= 6 {
			if v, ok := hexVal(b[2:6]); ok {
				buf := make([]byte, utf8.UTFMax)
				n := utf8.EncodeRune(buf, rune(v))
				return buf[:n], 6
			}
		}
	case 'U':
		if len(b) >= 10 {
			if v, ok := hexVal(b[2:10]); ok {
				buf := make([]byte, utf8.UTFMax)
				n := utf8.EncodeRune(buf, rune(v))
				return buf[:n], 10
			}
		}
	case 'o':
		if len(b) >= 5 {
			v, ok := octVal(b[2:5])
			if ok {
				return []byte{byte(v)}, 5
			}
		}
	}
	// Unknown escape: keep the backslash and following byte verbatim.
	return []byte{b[0], b[1]}, 2
}

func hexVal(b []byte) (int, bool) {
	v := 0
	for _, c := range b {
		d, ok := hexDigit(c)
		if !ok {
			return 0, false
		}
		v = v*16 + d
	}
	return v, true
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func octVal(b []byte) (int, bool) {
	v := 0
	for _, c := range b {
		if c < '0' || c > '7' {
			return 0, false
		}
		v = v*8 + int(c-'0')
	}
	return v, true
}

// UnescapeText decodes all backslash escapes in b into a freshly-allocated
// buffer, used when compiling quoted arguments (output field args, pattern
// bodies). Text with no backslash is returned unmodified (no copy).
func UnescapeText(b []byte) []byte {
	if indexByte(b, '\\') < 0 {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		if b[i] == '\\' && i+1 < len(b) {
			dec, n := decodeEscape(b[i:])
			out = append(out, dec...)
			i += n
			continue
		}
		out = append(out, b[i])
		i++
	}
	return out
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
