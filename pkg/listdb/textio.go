package listdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
)

// Text format errors.
var (
	ErrMalformedLine = errors.New("malformed line")
	ErrSizeMismatch  = errors.New("declared size does not match item count")
)

// maxLineBytes bounds a single line of the text format.
const maxLineBytes = 64 << 20

// FormatError reports a parse failure at a specific line of a text dump, or
// at a 1-based row of a decoded database.
type FormatError struct {
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("listdb: line %d: %v", e.Line, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Write serializes db in the flat text format, one list per line:
//
//	<size> <id>:<freq> <id>:<freq> ...
func (db *DB) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	var buf []byte

	for _, l := range db.Lists {
		buf = strconv.AppendInt(buf[:0], int64(len(l)), 10)

		for _, it := range l {
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(it.ID), 10)
			buf = append(buf, ':')
			buf = strconv.AppendUint(buf, uint64(it.Freq), 10)
		}

		buf = append(buf, '\n')

		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("listdb: write: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("listdb: flush: %w", err)
	}

	return nil
}

// Read parses the flat text format. Blank lines are skipped. Dim is set to
// one more than the largest id read.
func Read(r io.Reader) (*DB, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)

	db := New(0, 0)
	lineNo := 0

	for sc.Scan() {
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		l, err := parseLine(line)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Err: err}
		}

		db.Push(l)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("listdb: read: %w", err)
	}

	return db, nil
}

func parseLine(line string) (list.List, error) {
	fields := strings.Fields(line)

	size, err := strconv.Atoi(fields[0])
	if err != nil || size < 0 {
		return nil, fmt.Errorf("%w: bad size %q", ErrMalformedLine, fields[0])
	}

	if size != len(fields)-1 {
		return nil, fmt.Errorf("%w: declared %d, found %d", ErrSizeMismatch, size, len(fields)-1)
	}

	items := make([]list.Item, 0, size)

	for _, field := range fields[1:] {
		idStr, freqStr, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("%w: item %q", ErrMalformedLine, field)
		}

		id, idErr := strconv.ParseUint(idStr, 10, 32)
		freq, freqErr := strconv.ParseUint(freqStr, 10, 32)

		if idErr != nil || freqErr != nil {
			return nil, fmt.Errorf("%w: item %q", ErrMalformedLine, field)
		}

		if id > MaxID {
			return nil, fmt.Errorf("%w: id %d exceeds %d", ErrMalformedLine, id, uint32(MaxID))
		}

		items = append(items, list.Item{ID: uint32(id), Freq: uint32(freq)})
	}

	return list.New(items...), nil
}

// Save writes db to path in the flat text format.
func (db *DB) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("listdb: create %s: %w", path, err)
	}

	writeErr := db.Write(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("listdb: close %s: %w", path, closeErr)
	}

	return nil
}

// Load reads a flat text dump from path.
func Load(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("listdb: open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}
