package list

// walk performs a linear merge over two ordered sets. Exactly one of the
// callbacks fires per distinct id, in ascending id order.
func walk(a, b List, both func(x, y Item), onlyA, onlyB func(x Item)) {
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		switch {
		case a[i].ID == b[j].ID:
			both(a[i], b[j])

			i++
			j++
		case a[i].ID < b[j].ID:
			onlyA(a[i])

			i++
		default:
			onlyB(b[j])

			j++
		}
	}

	for ; i < len(a); i++ {
		onlyA(a[i])
	}

	for ; j < len(b); j++ {
		onlyB(b[j])
	}
}

func skip(Item) {}

// Union returns A ∪ B. Shared items keep the larger frequency.
func Union(a, b List) List {
	out := make(List, 0, len(a)+len(b))
	keep := func(x Item) { out = append(out, x) }

	walk(a, b, func(x, y Item) {
		x.Freq = max(x.Freq, y.Freq)
		out = append(out, x)
	}, keep, keep)

	return out
}

// Intersection returns A ∩ B. Shared items keep the smaller frequency.
func Intersection(a, b List) List {
	out := make(List, 0, min(len(a), len(b)))

	walk(a, b, func(x, y Item) {
		x.Freq = min(x.Freq, y.Freq)
		out = append(out, x)
	}, skip, skip)

	return out
}

// Difference returns A \ B with A's frequencies.
func Difference(a, b List) List {
	out := make(List, 0, len(a))

	walk(a, b, func(Item, Item) {}, func(x Item) { out = append(out, x) }, skip)

	return out
}

// IntersectionSize returns |A ∩ B| without allocating.
func IntersectionSize(a, b List) int {
	n := 0

	walk(a, b, func(Item, Item) { n++ }, skip, skip)

	return n
}

// UnionSize returns |A ∪ B| without allocating.
func UnionSize(a, b List) int {
	return len(a) + len(b) - IntersectionSize(a, b)
}

// DifferenceSize returns |A \ B| without allocating.
func DifferenceSize(a, b List) int {
	return len(a) - IntersectionSize(a, b)
}

// Jaccard returns |A ∩ B| / |A ∪ B|, or zero when either side is empty.
func Jaccard(a, b List) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := IntersectionSize(a, b)

	return float64(inter) / float64(len(a)+len(b)-inter)
}

// Overlap returns |A ∩ B| / min(|A|, |B|), or zero when either side is empty.
func Overlap(a, b List) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	return float64(IntersectionSize(a, b)) / float64(min(len(a), len(b)))
}

// HistogramIntersection returns Σ min(freq) / Σ max(freq) over A ∪ B.
func HistogramIntersection(a, b List) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var inter, union uint64

	acc := func(x Item) { union += uint64(x.Freq) }

	walk(a, b, func(x, y Item) {
		inter += uint64(min(x.Freq, y.Freq))
		union += uint64(max(x.Freq, y.Freq))
	}, acc, acc)

	if union == 0 {
		return 0
	}

	return float64(inter) / float64(union)
}

// WeightedSimilarity returns Σ w over A ∩ B divided by Σ w over A ∪ B.
func WeightedSimilarity(a, b List, w []float64) (float64, error) {
	if err := checkWeights(a, b, w); err != nil {
		return 0, err
	}

	return weightedSimilarity(a, b, w), nil
}

// WeightedHistogramIntersection is HistogramIntersection with every
// frequency scaled by the item's weight.
func WeightedHistogramIntersection(a, b List, w []float64) (float64, error) {
	if err := checkWeights(a, b, w); err != nil {
		return 0, err
	}

	return weightedHistogram(a, b, w), nil
}

func checkWeights(a, b List, w []float64) error {
	if len(a) > 0 && int(a.MaxID()) >= len(w) {
		return ErrWeightsTooShort
	}

	if len(b) > 0 && int(b.MaxID()) >= len(w) {
		return ErrWeightsTooShort
	}

	return nil
}

func weightedSimilarity(a, b List, w []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var inter, union float64

	acc := func(x Item) { union += w[x.ID] }

	walk(a, b, func(x, _ Item) {
		inter += w[x.ID]
		union += w[x.ID]
	}, acc, acc)

	return ratio(inter, union)
}

func weightedHistogram(a, b List, w []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var inter, union float64

	acc := func(x Item) { union += w[x.ID] * float64(x.Freq) }

	walk(a, b, func(x, y Item) {
		inter += w[x.ID] * float64(min(x.Freq, y.Freq))
		union += w[x.ID] * float64(max(x.Freq, y.Freq))
	}, acc, acc)

	return ratio(inter, union)
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}

	return num / den
}
