package extern

import (
	"bufio"
	"fmt"
	"io"
)

// PostFilter is the node-formatter pipe-filter contract (spec.md §9
// "edit.c/edit_sed.c/... are out of core scope"): a named stream
// transform invoked as `| filtername(args)` from a node formatter's
// output. Each filter reads the upstream text and writes its transformed
// form downstream.
type PostFilter func(w io.Writer, r io.Reader, args []string) error

// Filters is the registry of post-filter names the node-formatter pipeline
// syntax can dispatch to. sed/tr/wc/cut/sort/uniq/line/trim/echo/rev/tac/
// decode/encode are the family named in spec.md §9; only the handful with
// an unambiguous, argument-free reading are implemented here (trim, rev,
// tac, echo, wc, decode) — the rest are registered as explicit pass-throughs so a
// query referencing them still runs rather than failing to resolve, and
// DESIGN.md records the ones left as stand-ins.
var Filters = map[string]PostFilter{
	"trim":   filterTrim,
	"rev":    filterRev,
	"tac":    filterTac,
	"echo":   filterEcho,
	"wc":     filterWC,
	"sed":    passthrough,
	"tr":     passthrough,
	"cut":    passthrough,
	"sort":   passthrough,
	"uniq":   passthrough,
	"line":   passthrough,
	"decode": filterDecode,
	"encode": passthrough,
}

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

func passthrough(w io.Writer, r io.Reader, _ []string) error {
	_, err := io.Copy(w, r)
	return err
}

func filterTrim(w io.Writer, r io.Reader, _ []string) error {
	b, err := readAll(r)
	if err != nil {
		return err
	}
	start, end := 0, len(b)
	for start < end && isSpaceByte(b[start]) {
		start++
	}
	for end > start && isSpaceByte(b[end-1]) {
		end--
	}
	_, err = w.Write(b[start:end])
	return err
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func filterRev(w io.Writer, r io.Reader, _ []string) error {
	b, err := readAll(r)
	if err != nil {
		return err
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	_, err = w.Write(b)
	return err
}

// filterTac reverses line order, matching the `tac` utility it's named
// after (reverse `cat`).
func filterTac(w io.Writer, r io.Reader, _ []string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if _, err := fmt.Fprintln(w, lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func filterEcho(w io.Writer, r io.Reader, args []string) error {
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	for _, a := range args {
		if _, err := io.WriteString(w, a); err != nil {
			return err
		}
	}
	return nil
}

func filterWC(w io.Writer, r io.Reader, _ []string) error {
	b, err := readAll(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, len(b))
	return err
}

func filterDecode(w io.Writer, r io.Reader, _ []string) error {
	b, err := readAll(r)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, DecodeEntities(string(b)))
	return err
}
