// Package cmdutil runs external commands that act as data sources.
package cmdutil

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Output runs name with args and returns its stdout. A non-zero exit is an
// error that carries the first line of stderr.
func Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, wrap(name, err, stderr.String())
	}
	return out, nil
}

func wrap(name string, err error, stderr string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := firstLine(stderr); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
	}
	return fmt.Errorf("%s: %w", name, err)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// MaxLineSize is the default line limit for ScanLines.
const MaxLineSize = 4 * 1024 * 1024

// ScanLines reads lines from r and calls fn for each until fn returns false.
// A line longer than max bytes is consumed and dropped, and tooLong is called
// with its size; reading then continues with the next line. tooLong may be
// nil.
func ScanLines(r io.Reader, max int, fn func(string) bool, tooLong func(size int)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	size := 0
	for {
		frag, isPrefix, err := br.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		size += len(frag)
		if size <= max {
			line = append(line, frag...)
		}
		if isPrefix {
			continue
		}

		if size > max {
			if tooLong != nil {
				tooLong(size)
			}
		} else if !fn(string(line)) {
			return nil
		}
		line = line[:0]
		size = 0
	}
}
