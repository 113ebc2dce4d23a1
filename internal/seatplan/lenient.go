package seatplan

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var separatorCell = regexp.MustCompile(`^:?-+:?$`)

// ParseLenient accepts the looser shapes a generator tends to produce:
// code fences, Markdown tables (where a "|" inside new_tables splits the
// cell), comma separated table lists, a missing section marker and JSON
// bodies of the form {"assignments":[...],"notes":[...]}. Line numbers in
// errors refer to the original text.
func ParseLenient(text string) Result {
	lines := splitLines(text)
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			lines[i] = ""
		}
	}

	if body := strings.TrimSpace(strings.Join(lines, "\n")); strings.HasPrefix(body, "{") {
		if res, ok := parseJSON(body); ok {
			return res
		}
	}

	return parse(unmarkdown(lines), true)
}

// unmarkdown rewrites Markdown table rows as tab separated rows in place.
// Separator rows become blank lines.
func unmarkdown(lines []string) []string {
	out := make([]string, len(lines))
	var header []string
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if isMarker(trimmed) {
			header = nil
		}
		if !strings.HasPrefix(trimmed, "|") {
			out[i] = l
			continue
		}

		cells := splitMarkdownRow(trimmed)
		switch {
		case isSeparatorRow(cells):
			out[i] = ""
		case header == nil:
			header = cells
			out[i] = strings.Join(cells, "\t")
		default:
			out[i] = strings.Join(absorbTables(cells, header), "\t")
		}
	}
	return out
}

func splitMarkdownRow(row string) []string {
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	cells := strings.Split(row, "|")
	for i, c := range cells {
		cells[i] = strings.Trim(strings.TrimSpace(c), "`*")
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if !separatorCell.MatchString(c) {
			return false
		}
	}
	return len(cells) > 0
}

// absorbTables merges the overflow cells of a row back into its columns:
// digit cells following new_tables join it, anything left over joins reason.
func absorbTables(cells, header []string) []string {
	extra := len(cells) - len(header)
	if extra <= 0 {
		return cells
	}

	if k := columnIndex(header, ColNewTables); k >= 0 {
		n := 0
		for n < extra && k+n+1 < len(cells) && tableIDPattern.MatchString(cells[k+n+1]) {
			n++
		}
		cells = mergeCells(cells, k, n)
		extra -= n
	}
	if r := columnIndex(header, ColReason); r >= 0 && extra > 0 {
		cells = mergeCells(cells, r, extra)
	}
	return cells
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// mergeCells joins cells[at] with the n cells after it.
func mergeCells(cells []string, at, n int) []string {
	if n <= 0 || at+n >= len(cells) {
		return cells
	}
	merged := make([]string, 0, len(cells)-n)
	merged = append(merged, cells[:at]...)
	merged = append(merged, strings.Join(cells[at:at+n+1], "|"))
	merged = append(merged, cells[at+n+1:]...)
	return merged
}

type jsonPlan struct {
	Assignments []json.RawMessage `json:"assignments"`
	Notes       []string          `json:"notes"`
}

type jsonAssignment struct {
	ReservationID string `json:"reservation_id"`
	Action        string `json:"action"`
	NewTables     any    `json:"new_tables"`
	Reason        string `json:"reason"`
	Confidence    any    `json:"confidence"`
}

// parseJSON validates each entry like a TSV row. Line is the 1-based entry
// index.
func parseJSON(body string) (Result, bool) {
	var doc jsonPlan
	if err := json.Unmarshal([]byte(body), &doc); err != nil || doc.Assignments == nil {
		return Result{}, false
	}

	var res Result
	for i, raw := range doc.Assignments {
		var ja jsonAssignment
		if err := json.Unmarshal(raw, &ja); err != nil {
			res.Errors = append(res.Errors, ParseError{Line: i + 1, Message: "malformed assignment: " + err.Error(), Raw: string(raw)})
			continue
		}
		a, err := buildAssignment(
			strings.TrimSpace(ja.ReservationID),
			strings.TrimSpace(ja.Action),
			jsonTables(ja.NewTables),
			strings.TrimSpace(ja.Reason),
			jsonScalar(ja.Confidence),
			true,
		)
		if err != nil {
			res.Errors = append(res.Errors, ParseError{Line: i + 1, Message: err.Error(), Raw: string(raw)})
			continue
		}
		res.Plan.Assignments = append(res.Plan.Assignments, a)
	}
	for _, n := range doc.Notes {
		if n = strings.TrimSpace(n); n != "" {
			res.Plan.Notes = append(res.Plan.Notes, n)
		}
	}
	return res, true
}

func jsonTables(v any) string {
	list, ok := v.([]any)
	if !ok {
		return jsonScalar(v)
	}
	parts := make([]string, 0, len(list))
	for _, e := range list {
		parts = append(parts, jsonScalar(e))
	}
	return strings.Join(parts, "|")
}

func jsonScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
