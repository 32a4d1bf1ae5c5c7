// Package msglist parses pasted or file-based message lists.
package msglist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineBytes bounds a single pasted message.
const maxLineBytes = 64 * 1024

// Parse reads one message per line, trimming whitespace and skipping blank lines.
// Bullet markers are kept as written.
func Parse(r io.Reader) ([]string, error) {
	var msgs []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msgs = append(msgs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Load reads messages from the provided file path.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only message list.
			_ = cerr
		}
	}()

	msgs, err := Parse(file)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("message list is empty")
	}
	return msgs, nil
}
