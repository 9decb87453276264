// Package list implements the ordered set used throughout the engine: a
// slice of (id, frequency) items kept sorted by strictly increasing id.
//
// Every exported mutating operation restores the ordering invariant before
// returning. Set algebra works by linear merges over two sorted inputs.
package list

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// Sentinel errors for list operations.
var (
	ErrPositionOutOfRange = errors.New("list: position out of range")
	ErrItemNotFound       = errors.New("list: item not found")
	ErrWeightsTooShort    = errors.New("list: weight vector shorter than item domain")
)

// Item is a single element of an ordered set.
type Item struct {
	ID   uint32 `json:"id"`
	Freq uint32 `json:"freq"`
}

// List is an ordered set of items with strictly increasing ids.
type List []Item

// New builds an ordered set from arbitrary items. Duplicate ids are merged
// and their frequencies summed.
func New(items ...Item) List {
	l := make(List, len(items))
	copy(l, items)

	l.SortByItem()

	return l.Unique()
}

// FromIDs builds a binary ordered set (every frequency is one).
func FromIDs(ids ...uint32) List {
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{ID: id, Freq: 1}
	}

	return New(items...)
}

// Len returns the number of items.
func (l List) Len() int { return len(l) }

// IDs returns the item ids in order.
func (l List) IDs() []uint32 {
	ids := make([]uint32, len(l))
	for i, it := range l {
		ids[i] = it.ID
	}

	return ids
}

// Clone returns a deep copy. A nil list clones to nil.
func (l List) Clone() List {
	if l == nil {
		return nil
	}

	return slices.Clone(l)
}

// Equal reports whether both lists hold the same items with the same frequencies.
func (l List) Equal(other List) bool {
	return slices.Equal(l, other)
}

// BinarySearch returns the position of id, or the insertion point and false.
func (l List) BinarySearch(id uint32) (int, bool) {
	return slices.BinarySearchFunc(l, id, func(it Item, target uint32) int {
		switch {
		case it.ID < target:
			return -1
		case it.ID > target:
			return 1
		default:
			return 0
		}
	})
}

// Find returns the item with the given id.
func (l List) Find(id uint32) (Item, bool) {
	pos, ok := l.BinarySearch(id)
	if !ok {
		return Item{}, false
	}

	return l[pos], true
}

// Contains reports whether id is a member.
func (l List) Contains(id uint32) bool {
	_, ok := l.BinarySearch(id)

	return ok
}

// Push appends an item. Ids larger than the current last id keep the list
// ordered in O(1); anything else falls back to Add.
func (l List) Push(it Item) List {
	if n := len(l); n == 0 || l[n-1].ID < it.ID {
		return append(l, it)
	}

	return l.Add(it)
}

// Add inserts items at their sorted position. An id already present has its
// frequency increased.
func (l List) Add(items ...Item) List {
	for _, it := range items {
		pos, ok := l.BinarySearch(it.ID)
		if ok {
			l[pos].Freq += it.Freq

			continue
		}

		l = slices.Insert(l, pos, it)
	}

	return l
}

// Insert places an item at pos. The caller's position must keep the order.
func (l List) Insert(it Item, pos int) (List, error) {
	if pos < 0 || pos > len(l) {
		return l, ErrPositionOutOfRange
	}

	if (pos > 0 && l[pos-1].ID >= it.ID) || (pos < len(l) && l[pos].ID <= it.ID) {
		return l.Add(it), nil
	}

	return slices.Insert(l, pos, it), nil
}

// DeletePosition removes the item at pos.
func (l List) DeletePosition(pos int) (List, error) {
	if pos < 0 || pos >= len(l) {
		return l, ErrPositionOutOfRange
	}

	return slices.Delete(l, pos, pos+1), nil
}

// DeleteRange removes items in [from, to).
func (l List) DeleteRange(from, to int) (List, error) {
	if from < 0 || to > len(l) || from > to {
		return l, ErrPositionOutOfRange
	}

	return slices.Delete(l, from, to), nil
}

// DeleteItem removes the item with the given id.
func (l List) DeleteItem(id uint32) (List, error) {
	pos, ok := l.BinarySearch(id)
	if !ok {
		return l, ErrItemNotFound
	}

	return slices.Delete(l, pos, pos+1), nil
}

// Concat appends other without normalizing. The result may hold duplicate
// or unordered ids until Normalize is called.
func (l List) Concat(other List) List {
	return append(l, other...)
}

// Normalize sorts by id and merges duplicates, restoring the invariant after Concat.
func (l List) Normalize() List {
	l.SortByItem()

	return l.Unique()
}

// SortByItem sorts in place by ascending id.
func (l List) SortByItem() {
	slices.SortStableFunc(l, func(a, b Item) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}

// SortByFrequencyDesc sorts in place by descending frequency, ties broken by
// ascending id. The result is no longer an ordered set; it is used for
// rendering cluster models.
func (l List) SortByFrequencyDesc() {
	slices.SortStableFunc(l, func(a, b Item) int {
		switch {
		case a.Freq > b.Freq:
			return -1
		case a.Freq < b.Freq:
			return 1
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}

// Unique collapses adjacent items with equal ids, summing their
// frequencies. The input must be sorted by id.
func (l List) Unique() List {
	if len(l) < 2 {
		return l
	}

	w := 0

	for r := 1; r < len(l); r++ {
		if l[r].ID == l[w].ID {
			l[w].Freq += l[r].Freq

			continue
		}

		w++
		l[w] = l[r]
	}

	return l[:w+1]
}

// DeleteLessFrequent drops items with frequency below minFreq.
func (l List) DeleteLessFrequent(minFreq uint32) List {
	return slices.DeleteFunc(l, func(it Item) bool { return it.Freq < minFreq })
}

// DeleteMoreFrequent drops items with frequency above maxFreq.
func (l List) DeleteMoreFrequent(maxFreq uint32) List {
	return slices.DeleteFunc(l, func(it Item) bool { return it.Freq > maxFreq })
}

// SumFreq returns the sum of all frequencies.
func (l List) SumFreq() uint64 {
	var sum uint64
	for _, it := range l {
		sum += uint64(it.Freq)
	}

	return sum
}

// MaxFreq returns the largest frequency, or zero for an empty list.
func (l List) MaxFreq() uint32 {
	var m uint32
	for _, it := range l {
		m = max(m, it.Freq)
	}

	return m
}

// MaxID returns the largest id, or zero for an empty list.
func (l List) MaxID() uint32 {
	if len(l) == 0 {
		return 0
	}

	return l[len(l)-1].ID
}

// String renders the list as space separated id:freq pairs.
func (l List) String() string {
	var sb strings.Builder

	for i, it := range l {
		if i > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(strconv.FormatUint(uint64(it.ID), 10))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatUint(uint64(it.Freq), 10))
	}

	return sb.String()
}
