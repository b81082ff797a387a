package filestore_test

import (
	"testing"

	"tgstore/internal/filestore"
)

func record(id int64, size int64, cat filestore.Category) *filestore.FileRecord {
	return &filestore.FileRecord{ID: id, SizeBytes: size, Category: cat}
}

func TestAggregate(t *testing.T) {
	t.Run("computes totals and per-category breakdown", func(t *testing.T) {
		records := []*filestore.FileRecord{
			record(1, 10, filestore.CategoryDocument),
			record(2, 20, filestore.CategoryDocument),
			record(3, 30, filestore.CategoryImage),
		}

		stats := filestore.Aggregate(records, 5)

		if stats.TotalCount != 3 {
			t.Errorf("TotalCount = %d, want 3", stats.TotalCount)
		}
		if stats.TotalBytes != 60 {
			t.Errorf("TotalBytes = %d, want 60", stats.TotalBytes)
		}
		if got := stats.CountByCategory[filestore.CategoryDocument]; got != 2 {
			t.Errorf("CountByCategory[document] = %d, want 2", got)
		}
		if got := stats.CountByCategory[filestore.CategoryImage]; got != 1 {
			t.Errorf("CountByCategory[image] = %d, want 1", got)
		}
		if got := stats.BytesByCategory[filestore.CategoryDocument]; got != 30 {
			t.Errorf("BytesByCategory[document] = %d, want 30", got)
		}
		if got := stats.BytesByCategory[filestore.CategoryImage]; got != 30 {
			t.Errorf("BytesByCategory[image] = %d, want 30", got)
		}

		if len(stats.Largest) != 3 {
			t.Fatalf("len(Largest) = %d, want 3", len(stats.Largest))
		}
		if stats.Largest[0].SizeBytes != 30 {
			t.Errorf("Largest[0].SizeBytes = %d, want 30", stats.Largest[0].SizeBytes)
		}
	})

	t.Run("zero-count categories are omitted", func(t *testing.T) {
		stats := filestore.Aggregate([]*filestore.FileRecord{
			record(1, 10, filestore.CategoryDocument),
		}, 5)

		if _, ok := stats.CountByCategory[filestore.CategoryVideo]; ok {
			t.Error("CountByCategory contains a zero-count category")
		}
	})

	t.Run("largest list is capped at topN", func(t *testing.T) {
		records := []*filestore.FileRecord{
			record(1, 5, filestore.CategoryOther),
			record(2, 50, filestore.CategoryOther),
			record(3, 15, filestore.CategoryOther),
			record(4, 25, filestore.CategoryOther),
		}

		stats := filestore.Aggregate(records, 2)

		if len(stats.Largest) != 2 {
			t.Fatalf("len(Largest) = %d, want 2", len(stats.Largest))
		}
		if stats.Largest[0].ID != 2 || stats.Largest[1].ID != 4 {
			t.Errorf("Largest = [%d %d], want [2 4]", stats.Largest[0].ID, stats.Largest[1].ID)
		}
	})

	t.Run("empty input yields zero stats", func(t *testing.T) {
		stats := filestore.Aggregate(nil, 5)

		if stats.TotalCount != 0 {
			t.Errorf("TotalCount = %d, want 0", stats.TotalCount)
		}
		if stats.TotalBytes != 0 {
			t.Errorf("TotalBytes = %d, want 0", stats.TotalBytes)
		}
		if len(stats.Largest) != 0 {
			t.Errorf("len(Largest) = %d, want 0", len(stats.Largest))
		}
		if len(stats.CountByCategory) != 0 {
			t.Errorf("len(CountByCategory) = %d, want 0", len(stats.CountByCategory))
		}
	})

	t.Run("does not reorder the input slice", func(t *testing.T) {
		records := []*filestore.FileRecord{
			record(1, 5, filestore.CategoryOther),
			record(2, 50, filestore.CategoryOther),
		}

		filestore.Aggregate(records, 5)

		if records[0].ID != 1 {
			t.Error("Aggregate mutated its input")
		}
	})
}
