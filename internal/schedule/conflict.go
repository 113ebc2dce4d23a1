package schedule

// MarkConflicts flags every item that shares a table with another item
// during an overlapping interval. Touching intervals do not conflict.
// Items that do not conflict keep a preset status or become normal.
// The input slice is not modified and order is preserved.
func MarkConflicts(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	conflicting := make([]bool, len(out))
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[i].SharesTable(out[j]) && out[i].Overlaps(out[j]) {
				conflicting[i] = true
				conflicting[j] = true
			}
		}
	}

	for i := range out {
		switch {
		case conflicting[i]:
			out[i].Status = StatusWarn
		case out[i].Status == "":
			out[i].Status = StatusNormal
		}
	}
	return out
}
