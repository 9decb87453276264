package listdb

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
)

// Fingerprint hashes the item ids of l, ignoring frequencies.
func Fingerprint(l list.List) uint64 {
	d := xxhash.New()

	var buf [4]byte

	for _, it := range l {
		binary.LittleEndian.PutUint32(buf[:], it.ID)
		_, _ = d.Write(buf[:])
	}

	return d.Sum64()
}

func sameIDs(a, b list.List) bool {
	return slices.EqualFunc(a, b, func(x, y list.Item) bool { return x.ID == y.ID })
}

// Dedup removes lists whose id sets repeat an earlier list and returns the
// number removed. Order of the surviving lists is preserved.
func (db *DB) Dedup() int {
	seen := make(map[uint64][]int, len(db.Lists))
	kept := db.Lists[:0]

	for _, l := range db.Lists {
		fp := Fingerprint(l)

		dup := slices.ContainsFunc(seen[fp], func(pos int) bool { return sameIDs(kept[pos], l) })
		if dup {
			continue
		}

		seen[fp] = append(seen[fp], len(kept))
		kept = append(kept, l)
	}

	removed := len(db.Lists) - len(kept)
	clear(db.Lists[len(kept):])
	db.Lists = kept

	return removed
}
