// Package logtail reads the end of the plugin log file.
package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// NoLogs is returned in place of content when the log file does not exist.
const NoLogs = "No logs available"

// Tail returns the last n lines of the file at path, oldest first, with
// their line endings. A missing file yields NoLogs.
func Tail(path string, n int) (string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NoLogs, nil
	}
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	lines, err := lastLines(f, n)
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	return strings.Join(lines, ""), nil
}

// lastLines keeps a ring of the most recent n lines read from r.
func lastLines(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	ring := make([]string, 0, n)
	start := 0
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if len(ring) < n {
				ring = append(ring, line)
			} else {
				ring[start] = line
				start = (start + 1) % n
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return append(ring[start:], ring[:start]...), nil
}
