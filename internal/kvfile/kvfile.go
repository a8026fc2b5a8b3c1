// Package kvfile reads and writes flat "key = value" files, the INI-like
// format FPP uses for plugin settings.
package kvfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrLineBreak is returned by Write for a key or value containing CR or LF,
// which would split the entry across lines.
var ErrLineBreak = errors.New("line break in key or value")

// SyntaxError reports a line that is neither blank, a comment, nor a
// key/value pair.
type SyntaxError struct {
	Line int
	Text string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: expected key = value, got %q", e.Line, e.Text)
}

// Parse reads key/value pairs from r. Lines starting with ';' or '#' are
// comments, and "[section]" headers are ignored. Values may be wrapped in
// single or double quotes. Later keys win.
func Parse(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		if line[0] == '[' && line[len(line)-1] == ']' {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			return nil, &SyntaxError{Line: n, Text: line}
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, &SyntaxError{Line: n, Text: line}
		}
		values[key] = unquote(strings.TrimSpace(line[idx+1:]))
	}
	return values, scanner.Err()
}

// ParseString is Parse over a string.
func ParseString(s string) (map[string]string, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	values, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Pair is one ordered entry for Write.
type Pair struct {
	Key   string
	Value string
}

// Write emits header lines as "; " comments followed by one "key = value"
// line per pair, in order.
func Write(w io.Writer, header []string, pairs []Pair) error {
	for _, p := range pairs {
		if strings.ContainsAny(p.Key, "\r\n") || strings.ContainsAny(p.Value, "\r\n") {
			return fmt.Errorf("%w: %q", ErrLineBreak, p.Key)
		}
	}
	bw := bufio.NewWriter(w)
	for _, h := range header {
		if _, err := fmt.Fprintf(bw, "; %s\n", h); err != nil {
			return err
		}
	}
	if len(header) > 0 {
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	for _, p := range pairs {
		if _, err := fmt.Fprintf(bw, "%s = %s\n", p.Key, p.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}
