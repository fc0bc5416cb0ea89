package memory

import (
	"context"
	"sort"

	"github.com/habiliai/spoar/errors"
	"github.com/samber/lo"
)

type CleanupReport struct {
	Total   int
	Groups  [][]Record
	Deleted []string
	DryRun  bool
}

// FindDuplicateGroups groups records whose embeddings are at least threshold
// similar. Every pair is compared, so this is only suitable for small
// stores. A record joins at most one group; singletons are omitted.
func FindDuplicateGroups(records []Record, threshold float64) [][]Record {
	grouped := make([]bool, len(records))

	var groups [][]Record
	for i := range records {
		if grouped[i] {
			continue
		}

		group := []Record{records[i]}
		for j := i + 1; j < len(records); j++ {
			if grouped[j] {
				continue
			}
			if CosineSimilarity(records[i].Embedding, records[j].Embedding) >= threshold {
				group = append(group, records[j])
				grouped[j] = true
			}
		}

		if len(group) > 1 {
			grouped[i] = true
			groups = append(groups, group)
		}
	}

	return groups
}

// SelectForDeletion keeps the most recent record of a group and returns the
// others.
func SelectForDeletion(group []Record) []Record {
	if len(group) < 2 {
		return nil
	}

	sorted := append([]Record(nil), group...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	return sorted[1:]
}

// Cleanup deletes near-duplicate memories, keeping the newest of each group.
// With dryRun nothing is deleted and the report lists what would be.
func (s *Service) Cleanup(ctx context.Context, threshold float64, dryRun bool) (CleanupReport, error) {
	records, err := s.List(ctx)
	if err != nil {
		return CleanupReport{}, err
	}

	report := CleanupReport{
		Total:  len(records),
		Groups: FindDuplicateGroups(records, threshold),
		DryRun: dryRun,
	}
	for _, group := range report.Groups {
		report.Deleted = append(report.Deleted, lo.Map(SelectForDeletion(group), func(r Record, _ int) string {
			return r.ID
		})...)
	}

	if dryRun || len(report.Deleted) == 0 {
		return report, nil
	}

	if err := s.store.Delete(ctx, report.Deleted...); err != nil {
		return report, errors.Wrapf(err, "failed to delete %d duplicates", len(report.Deleted))
	}

	s.logger.InfoContext(ctx, "duplicate memories deleted", "count", len(report.Deleted))
	return report, nil
}
