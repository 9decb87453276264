package weights

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedWeight is returned for a line that is not a float.
var ErrMalformedWeight = errors.New("malformed weight")

// FormatError reports a parse failure at a specific line of a weights file.
type FormatError struct {
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("weights: line %d: %v", e.Line, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Read parses one weight per line. Blank lines are skipped.
func Read(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)

	var (
		w      []float64
		lineNo int
	)

	for sc.Scan() {
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Err: fmt.Errorf("%w: %q", ErrMalformedWeight, line)}
		}

		w = append(w, v)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("weights: read: %w", err)
	}

	return w, nil
}

// Write emits one weight per line.
func Write(wr io.Writer, w []float64) error {
	bw := bufio.NewWriter(wr)

	var buf []byte

	for _, v := range w {
		buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
		buf = append(buf, '\n')

		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("weights: write: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("weights: flush: %w", err)
	}

	return nil
}

// Load reads a weights file.
func Load(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("weights: open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Save writes a weights file.
func Save(path string, w []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("weights: create %s: %w", path, err)
	}

	writeErr := Write(f, w)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("weights: close %s: %w", path, closeErr)
	}

	return nil
}
