package shingle

// Set is a deduplicated collection of shingle hashes.
type Set map[uint64]struct{}

// Len returns the number of distinct shingles.
func (s Set) Len() int {
	return len(s)
}

// Contains reports whether h is in the set.
func (s Set) Contains(h uint64) bool {
	_, ok := s[h]
	return ok
}

// Jaccard returns |A∩B| / |A∪B|. Two empty sets have similarity 0.
func (s Set) Jaccard(other Set) float64 {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for h := range small {
		if _, ok := large[h]; ok {
			intersection++
		}
	}

	union := len(s) + len(other) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// Jaccard is a convenience for comparing two texts under the same shingle size.
func Jaccard(a, b string, size int) (float64, error) {
	setA, err := Extract(a, size)
	if err != nil {
		return 0, err
	}
	setB, err := Extract(b, size)
	if err != nil {
		return 0, err
	}
	return setA.Jaccard(setB), nil
}
