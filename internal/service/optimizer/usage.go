package optimizer

import (
	"slices"

	"github.com/KasumiMercury/primind-floor-operations/internal/seatplan"
)

// lockedHolder marks tables held by locked reservations that are not part of
// the plan.
const lockedHolder = -1

// TableUsage maps a table id to the plan rows holding it. One value is built
// per post-pass run and never shared between runs.
type TableUsage map[string][]int

// NewTableUsage records the tables of every row that is not a cancel.
func NewTableUsage(assignments []seatplan.Assignment) TableUsage {
	u := make(TableUsage)
	for i, a := range assignments {
		if a.Action == seatplan.ActionCancel {
			continue
		}
		u.Claim(i, a.NewTables)
	}
	return u
}

func (u TableUsage) Claim(row int, tables []string) {
	for _, t := range tables {
		if !slices.Contains(u[t], row) {
			u[t] = append(u[t], row)
		}
	}
}

func (u TableUsage) Release(row int, tables []string) {
	for _, t := range tables {
		holders := slices.DeleteFunc(u[t], func(x int) bool { return x == row })
		if len(holders) == 0 {
			delete(u, t)
			continue
		}
		u[t] = holders
	}
}

// FreeFor reports whether table is unused or used only by row.
func (u TableUsage) FreeFor(table string, row int) bool {
	for _, holder := range u[table] {
		if holder != row {
			return false
		}
	}
	return true
}

func (u TableUsage) AllFreeFor(tables []string, row int) bool {
	for _, t := range tables {
		if !u.FreeFor(t, row) {
			return false
		}
	}
	return true
}
