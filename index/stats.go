package index

import "sort"

// IndexStats describes the shape of a built index.
type IndexStats struct {
	Documents        int     `json:"documents"`
	Indexed          int     `json:"indexed"`
	Skipped          int     `json:"skipped"`
	ShingleSize      int     `json:"shingle_size"`
	SignatureLength  int     `json:"signature_length"`
	BandWidth        int     `json:"band_width"`
	Bands            int     `json:"bands"`
	Buckets          int     `json:"buckets"`
	BucketsPerSlot   []int   `json:"buckets_per_slot"`
	SharedBuckets    int     `json:"shared_buckets"`
	MinBucketSize    int     `json:"min_bucket_size"`
	MaxBucketSize    int     `json:"max_bucket_size"`
	AvgBucketSize    float64 `json:"avg_bucket_size"`
	MedianBucketSize float64 `json:"median_bucket_size"`
}

// Stats computes bucket statistics across all band-slots.
func (idx *LSHIndex) Stats() IndexStats {
	stats := IndexStats{
		Documents:       idx.NumDocuments(),
		Skipped:         len(idx.skipped),
		ShingleSize:     idx.Settings.ShingleSize,
		SignatureLength: idx.Settings.SignatureLength,
		BandWidth:       idx.Settings.BandWidth,
		Bands:           idx.NumBands(),
		BucketsPerSlot:  make([]int, idx.NumBands()),
	}

	for id := range idx.signatures {
		if idx.IsIndexed(id) {
			stats.Indexed++
		}
	}

	var sizes []int
	total := 0
	for slot, table := range idx.Tables {
		stats.BucketsPerSlot[slot] = len(table)
		for _, ids := range table {
			sizes = append(sizes, len(ids))
			total += len(ids)
			if len(ids) > 1 {
				stats.SharedBuckets++
			}
		}
	}
	stats.Buckets = len(sizes)

	if len(sizes) > 0 {
		sort.Ints(sizes)
		stats.MinBucketSize = sizes[0]
		stats.MaxBucketSize = sizes[len(sizes)-1]
		stats.AvgBucketSize = float64(total) / float64(len(sizes))

		if len(sizes)%2 == 0 {
			mid := len(sizes) / 2
			stats.MedianBucketSize = float64(sizes[mid-1]+sizes[mid]) / 2.0
		} else {
			stats.MedianBucketSize = float64(sizes[len(sizes)/2])
		}
	}

	return stats
}
