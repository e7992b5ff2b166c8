package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// maxLineBytes bounds a single diary line.
const maxLineBytes = 1 << 20

// Source reads a diary file from disk.
// It implements pipeline.LineSource.
type Source struct {
	path string
}

// NewSource creates a Source for the given path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// ReadLines reads the whole file up front. Any error is fatal for the run.
func (s *Source) ReadLines(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open diary: %w", err)
	}
	defer f.Close()

	lines, err := ScanLines(f)
	if err != nil {
		return nil, fmt.Errorf("read diary %s: %w", s.path, err)
	}
	return lines, nil
}

// ScanLines splits r into lines without their line terminators.
func ScanLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
