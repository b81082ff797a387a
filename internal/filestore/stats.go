package filestore

import "sort"

// Stats summarizes an owner's stored files.
type Stats struct {
	TotalCount      int
	TotalBytes      int64
	CountByCategory map[Category]int   // categories with zero count are omitted
	BytesByCategory map[Category]int64
	Largest         []*FileRecord // up to topN records, largest first
}

// Aggregate computes Stats from a single snapshot of an owner's records,
// as returned by one List call. Working from one read means a record is
// never counted twice even while concurrent inserts or deletes are in
// flight. For an empty snapshot all totals are zero and Largest is empty.
func Aggregate(records []*FileRecord, topN int) *Stats {
	stats := &Stats{
		CountByCategory: make(map[Category]int),
		BytesByCategory: make(map[Category]int64),
	}

	for _, r := range records {
		stats.TotalCount++
		stats.TotalBytes += r.SizeBytes
		stats.CountByCategory[r.Category]++
		stats.BytesByCategory[r.Category] += r.SizeBytes
	}

	if topN <= 0 || len(records) == 0 {
		return stats
	}

	largest := make([]*FileRecord, len(records))
	copy(largest, records)
	sort.SliceStable(largest, func(i, j int) bool {
		return largest[i].SizeBytes > largest[j].SizeBytes
	})
	if len(largest) > topN {
		largest = largest[:topN]
	}
	stats.Largest = largest

	return stats
}
