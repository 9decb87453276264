// Package vocab reads vocabularies and renders id sets as words.
//
// A vocabulary file has one entry per line:
//
//	term = id = corpus_frequency = document_frequency
package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

// entryFields is the number of '='-separated fields per line.
const entryFields = 4

// ErrMalformedEntry is returned for a line that does not have four fields.
var ErrMalformedEntry = errors.New("malformed vocabulary entry")

// FormatError reports a parse failure at a specific line of a vocabulary file.
type FormatError struct {
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("vocab: line %d: %v", e.Line, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Entry is one vocabulary term.
type Entry struct {
	Term     string `json:"term"`
	ID       uint32 `json:"id"`
	CorpFreq uint32 `json:"corpus_frequency"`
	DocFreq  uint32 `json:"document_frequency"`
}

// Vocabulary maps item ids to terms.
type Vocabulary struct {
	Entries []Entry
	byID    map[uint32]int
}

// Read parses a vocabulary. Blank lines are skipped.
func Read(r io.Reader) (*Vocabulary, error) {
	v := &Vocabulary{byID: make(map[uint32]int)}
	sc := bufio.NewScanner(r)
	lineNo := 0

	for sc.Scan() {
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		e, err := parseEntry(line)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Err: err}
		}

		v.byID[e.ID] = len(v.Entries)
		v.Entries = append(v.Entries, e)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read: %w", err)
	}

	return v, nil
}

func parseEntry(line string) (Entry, error) {
	fields := strings.Split(line, "=")
	if len(fields) != entryFields {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedEntry, line)
	}

	var nums [entryFields - 1]uint32

	for i, f := range fields[1:] {
		n, err := strconv.ParseUint(strings.TrimSpace(f), 10, 32)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: %q", ErrMalformedEntry, line)
		}

		nums[i] = uint32(n)
	}

	return Entry{Term: strings.TrimSpace(fields[0]), ID: nums[0], CorpFreq: nums[1], DocFreq: nums[2]}, nil
}

// Load reads a vocabulary file.
func Load(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.Entries) }

// Term returns the term for id, or the id itself when unknown.
func (v *Vocabulary) Term(id uint32) string {
	if i, ok := v.byID[id]; ok {
		return v.Entries[i].Term
	}

	return strconv.FormatUint(uint64(id), 10)
}

// Words renders l as space separated term[freq] tokens.
func (v *Vocabulary) Words(l list.List) string {
	var sb strings.Builder

	for i, it := range l {
		if i > 0 {
			sb.WriteByte(' ')
		}

		fmt.Fprintf(&sb, "%s[%d]", v.Term(it.ID), it.Freq)
	}

	return sb.String()
}

// WriteWords renders every list of db as one line of words.
func (v *Vocabulary) WriteWords(w io.Writer, db *listdb.DB) error {
	bw := bufio.NewWriter(w)

	for _, l := range db.Lists {
		if _, err := bw.WriteString(v.Words(l) + "\n"); err != nil {
			return fmt.Errorf("vocab: write: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("vocab: flush: %w", err)
	}

	return nil
}
