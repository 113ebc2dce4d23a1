package schedule

import (
	"cmp"
	"errors"
	"slices"
	"time"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

type SelectOptions struct {
	DayStartMs int64
	Location   *time.Location
	Courses    []domain.Course

	// FreeDeparted releases the tables of departed parties for conflict checks.
	FreeDeparted bool
}

// Skipped is a record that could not be placed on the schedule.
type Skipped struct {
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

type Selection struct {
	Items   []Item    `json:"items"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// Select normalizes records, orders them by start time and marks conflicts.
func Select(records []domain.Record, opts SelectOptions) Selection {
	n := NewNormalizer(opts.DayStartMs, opts.Location, opts.Courses)

	var sel Selection
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		item, err := n.Normalize(rec)
		if err != nil {
			reason := "invalid"
			switch {
			case errors.Is(err, ErrMissingID):
				reason = "missing_id"
			case errors.Is(err, ErrNoTables):
				reason = "no_tables"
			}
			sel.Skipped = append(sel.Skipped, Skipped{ID: toString(first(rec, idFields)), Reason: reason})
			continue
		}
		items = append(items, item)
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		return cmp.Or(
			cmp.Compare(a.StartMs, b.StartMs),
			cmp.Compare(a.PrimaryTable(), b.PrimaryTable()),
			cmp.Compare(a.ID, b.ID),
		)
	})

	if !opts.FreeDeparted {
		sel.Items = MarkConflicts(items)
		return sel
	}

	active := make([]Item, 0, len(items))
	index := make([]int, 0, len(items))
	for i, item := range items {
		if item.Departed {
			items[i].Status = StatusNormal
			continue
		}
		active = append(active, item)
		index = append(index, i)
	}
	for k, marked := range MarkConflicts(active) {
		items[index[k]] = marked
	}
	sel.Items = items
	return sel
}
