// Package listdb provides DB, an ordered collection of ordered sets.
//
// A DB is both the input corpus of the miners (one set per document) and
// their output (one set of document ids per mined group or cluster). The
// Dim field records the item domain: every id in every list is below Dim.
package listdb

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
)

// Sentinel errors for database operations.
var (
	ErrPositionOutOfRange = errors.New("listdb: position out of range")
	ErrEmptyDB            = errors.New("listdb: database is empty")
	ErrUnsorted           = errors.New("listdb: ids are not strictly increasing")
	ErrIDOutOfRange       = errors.New("listdb: id outside the item domain")
)

// MaxID is the largest item id a database may hold; Dim must stay
// representable as MaxID+1.
const MaxID = math.MaxUint32 - 1

// DB is an ordered sequence of lists together with the item domain size.
type DB struct {
	Lists []list.List `json:"lists"`
	Dim   uint32      `json:"dim"`
}

// New creates a database with capacity for size lists over a domain of dim items.
func New(size int, dim uint32) *DB {
	return &DB{Lists: make([]list.List, 0, size), Dim: dim}
}

// FromLists wraps lists into a database and infers Dim from the largest id.
func FromLists(lists ...list.List) *DB {
	db := &DB{Lists: lists}
	db.Dim = db.inferDim()

	return db
}

// Len returns the number of lists.
func (db *DB) Len() int { return len(db.Lists) }

// At returns the list at pos.
func (db *DB) At(pos int) list.List { return db.Lists[pos] }

// Push appends l and takes ownership of it.
func (db *DB) Push(l list.List) {
	db.Lists = append(db.Lists, l)
	db.growDim(l)
}

// Pop removes the last list.
func (db *DB) Pop() (list.List, error) {
	n := len(db.Lists)
	if n == 0 {
		return nil, ErrEmptyDB
	}

	l := db.Lists[n-1]
	db.Lists[n-1] = nil
	db.Lists = db.Lists[:n-1]

	return l, nil
}

// Truncate keeps the first n lists.
func (db *DB) Truncate(n int) {
	if n >= len(db.Lists) {
		return
	}

	clear(db.Lists[n:])
	db.Lists = db.Lists[:n]
}

// Insert places l at pos.
func (db *DB) Insert(l list.List, pos int) error {
	if pos < 0 || pos > len(db.Lists) {
		return ErrPositionOutOfRange
	}

	db.Lists = slices.Insert(db.Lists, pos, l)
	db.growDim(l)

	return nil
}

// DeletePosition removes the list at pos and releases its storage.
func (db *DB) DeletePosition(pos int) error {
	return db.DeleteRange(pos, pos+1)
}

// DeleteRange removes lists in [from, to).
func (db *DB) DeleteRange(from, to int) error {
	if from < 0 || to > len(db.Lists) || from > to {
		return ErrPositionOutOfRange
	}

	db.Lists = slices.Delete(db.Lists, from, to)

	return nil
}

// Append moves every list of other to the end of db and empties other.
func (db *DB) Append(other *DB) {
	db.Lists = append(db.Lists, other.Lists...)
	db.Dim = max(db.Dim, other.Dim)
	other.Lists = nil
}

// MergeLists concatenates the list at src into the list at dst (Concat
// followed by Normalize, frequencies summed) and empties src.
func (db *DB) MergeLists(dst, src int) error {
	if dst < 0 || dst >= len(db.Lists) || src < 0 || src >= len(db.Lists) {
		return ErrPositionOutOfRange
	}

	if dst == src {
		return nil
	}

	db.Lists[dst] = db.Lists[dst].Concat(db.Lists[src]).Normalize()
	db.Lists[src] = nil

	return nil
}

// SortBySize sorts lists by ascending size. Equal sizes keep their order.
func (db *DB) SortBySize() {
	slices.SortStableFunc(db.Lists, func(a, b list.List) int { return len(a) - len(b) })
}

// SortBySizeDesc sorts lists by descending size. Equal sizes keep their order.
func (db *DB) SortBySizeDesc() {
	slices.SortStableFunc(db.Lists, func(a, b list.List) int { return len(b) - len(a) })
}

// DeleteSmallest drops every list with fewer than minSize items. The
// remaining lists are left sorted by descending size; a list of exactly
// minSize items is kept.
func (db *DB) DeleteSmallest(minSize int) {
	db.SortBySizeDesc()

	pos := slices.IndexFunc(db.Lists, func(l list.List) bool { return len(l) < minSize })
	if pos >= 0 {
		db.Truncate(pos)
	}
}

// DeleteLargest drops every list with more than maxSize items. The remaining
// lists are left sorted by ascending size.
func (db *DB) DeleteLargest(maxSize int) {
	db.SortBySize()

	pos := slices.IndexFunc(db.Lists, func(l list.List) bool { return len(l) > maxSize })
	if pos >= 0 {
		db.Truncate(pos)
	}
}

// ApplyToAll replaces every list with fn(list).
func (db *DB) ApplyToAll(fn func(list.List) list.List) {
	for i, l := range db.Lists {
		db.Lists[i] = fn(l)
	}
}

// NonEmpty returns the number of lists holding at least one item.
func (db *DB) NonEmpty() int {
	n := 0

	for _, l := range db.Lists {
		if len(l) > 0 {
			n++
		}
	}

	return n
}

// TotalItems returns the sum of list sizes.
func (db *DB) TotalItems() int {
	n := 0
	for _, l := range db.Lists {
		n += len(l)
	}

	return n
}

// Sizes returns the size of every list in order.
func (db *DB) Sizes() []int {
	sizes := make([]int, len(db.Lists))
	for i, l := range db.Lists {
		sizes[i] = len(l)
	}

	return sizes
}

// MaxItem returns the largest id present in any list.
func (db *DB) MaxItem() (uint32, bool) {
	var (
		m     uint32
		found bool
	)

	for _, l := range db.Lists {
		if len(l) == 0 {
			continue
		}

		m = max(m, l.MaxID())
		found = true
	}

	return m, found
}

// Clone returns a deep copy.
func (db *DB) Clone() *DB {
	out := &DB{Lists: make([]list.List, len(db.Lists)), Dim: db.Dim}
	for i, l := range db.Lists {
		out.Lists[i] = l.Clone()
	}

	return out
}

// Validate checks that every list is strictly increasing by id and that
// every id is at most MaxID and below Dim. Errors carry the 1-based row.
func (db *DB) Validate() error {
	for row, l := range db.Lists {
		for i, it := range l {
			switch {
			case i > 0 && it.ID <= l[i-1].ID:
				return &FormatError{Line: row + 1, Err: fmt.Errorf("%w: %d after %d", ErrUnsorted, it.ID, l[i-1].ID)}
			case it.ID > MaxID || it.ID >= db.Dim:
				return &FormatError{Line: row + 1, Err: fmt.Errorf("%w: %d (dim %d)", ErrIDOutOfRange, it.ID, db.Dim)}
			}
		}
	}

	return nil
}

// FitDim raises Dim to cover the largest id present. Lists need not be
// sorted.
func (db *DB) FitDim() {
	for _, l := range db.Lists {
		for _, it := range l {
			if it.ID >= db.Dim {
				db.Dim = dimFor(it.ID)
			}
		}
	}
}

func (db *DB) inferDim() uint32 {
	m, ok := db.MaxItem()
	if !ok {
		return 0
	}

	return dimFor(m)
}

func (db *DB) growDim(l list.List) {
	if len(l) > 0 && l.MaxID() >= db.Dim {
		db.Dim = dimFor(l.MaxID())
	}
}

// dimFor saturates instead of wrapping to zero for ids past MaxID.
func dimFor(id uint32) uint32 {
	if id > MaxID {
		return math.MaxUint32
	}

	return id + 1
}
