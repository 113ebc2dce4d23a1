package schedule

import "errors"

type Status string

const (
	StatusNormal Status = "normal"
	StatusWarn   Status = "warn"
)

var (
	ErrMissingID = errors.New("schedule: record has no id")
	ErrNoTables  = errors.New("schedule: record has no table assignment")
)

// Item is the canonical, derived view of one reservation on the floor.
// It is recomputed from the raw record on every read.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Guests   int      `json:"guests"`
	Tables   []string `json:"tables"`
	StartMs  int64    `json:"startMs"`
	EndMs    int64    `json:"endMs"`
	Status   Status   `json:"status"`
	Arrived  bool     `json:"arrived"`
	Paid     bool     `json:"paid"`
	Departed bool     `json:"departed"`
	Pinned   bool     `json:"pinned,omitempty"`
	Course   string   `json:"course,omitempty"`
	Notes    string   `json:"notes,omitempty"`
	Labels   []string `json:"labels,omitempty"`
}

// PrimaryTable returns the first table of the item.
func (i Item) PrimaryTable() string {
	if len(i.Tables) == 0 {
		return ""
	}
	return i.Tables[0]
}

// Overlaps reports a strict overlap of the half-open intervals.
func (i Item) Overlaps(o Item) bool {
	return max(i.StartMs, o.StartMs) < min(i.EndMs, o.EndMs)
}

// SharesTable reports whether the two items have at least one table in common.
func (i Item) SharesTable(o Item) bool {
	for _, a := range i.Tables {
		for _, b := range o.Tables {
			if a == b {
				return true
			}
		}
	}
	return false
}
