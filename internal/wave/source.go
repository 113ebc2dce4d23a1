package wave

import (
	"cmp"
	"slices"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/schedule"
	"github.com/KasumiMercury/primind-floor-operations/internal/timemath"
)

type SourceFilter struct {
	PositionIDs     []string
	Tables          []string
	IncludeDeparted bool
}

// SelectTasks expands every scheduled item into one task per offset of its
// course and keeps the tasks matching the filter.
func SelectTasks(items []schedule.Item, courses []domain.Course, f SourceFilter) []Task {
	var tasks []Task
	for _, it := range items {
		if it.Departed && !f.IncludeDeparted {
			continue
		}
		if len(f.Tables) > 0 && !anyVisible(it.Tables, f.Tables) {
			continue
		}
		course, ok := domain.FindCourse(courses, it.Course)
		if !ok {
			continue
		}
		for _, ct := range course.Tasks {
			if len(f.PositionIDs) > 0 && !slices.Contains(f.PositionIDs, ct.PositionID) {
				continue
			}
			tasks = append(tasks, Task{
				TimeMs:     it.StartMs + int64(ct.OffsetMinutes)*timemath.MinuteMs,
				Guests:     it.Guests,
				PositionID: ct.PositionID,
				Table:      it.PrimaryTable(),
			})
		}
	}

	slices.SortStableFunc(tasks, func(a, b Task) int {
		return cmp.Or(cmp.Compare(a.TimeMs, b.TimeMs), cmp.Compare(a.PositionID, b.PositionID))
	})
	return tasks
}

func anyVisible(tables, visible []string) bool {
	for _, t := range tables {
		if slices.Contains(visible, t) {
			return true
		}
	}
	return false
}
