package seatplan

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	SectionAssignments = "##ASSIGNMENTS"
	SectionNotes       = "##NOTES"
)

const (
	ColReservationID = "reservation_id"
	ColAction        = "action"
	ColNewTables     = "new_tables"
	ColReason        = "reason"
	ColConfidence    = "confidence"
)

// Columns is the header written by Serialize. Parse accepts any order.
var Columns = []string{ColReservationID, ColAction, ColNewTables, ColReason, ColConfidence}

var (
	tableIDPattern  = regexp.MustCompile(`^[0-9]+$`)
	lenientTableSep = regexp.MustCompile(`[|,、\s]+`)
)

var errMissingReservationID = errors.New("reservation_id is required")

// Parse reads a strict ##ASSIGNMENTS / ##NOTES document. Markers, column
// names and actions must match exactly and the reason cell is kept verbatim.
// Row problems are collected and the row is dropped; a missing section or
// header is fatal.
func Parse(text string) Result {
	return parse(splitLines(text), false)
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func fatal(line int, msg, raw string) Result {
	return Result{Fatal: true, Errors: []ParseError{{Line: line, Message: msg, Raw: raw}}}
}

func parse(lines []string, lenient bool) Result {
	headerIdx := -1
	if marker := indexOfMarker(lines, SectionAssignments, lenient); marker >= 0 {
		headerIdx = nextNonBlank(lines, marker+1)
		if headerIdx < 0 || isMarker(lines[headerIdx]) {
			return fatal(marker+1, "missing header row after "+SectionAssignments, lines[marker])
		}
	} else if lenient {
		headerIdx = indexOfHeader(lines)
	}
	if headerIdx < 0 {
		return fatal(0, "missing "+SectionAssignments+" section", "")
	}

	cols := make(map[string]int)
	for i, name := range strings.Split(lines[headerIdx], "\t") {
		name = strings.TrimSpace(name)
		if lenient {
			name = strings.ToLower(name)
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fatal(headerIdx+1, "missing required columns: "+strings.Join(missing, ", "), lines[headerIdx])
	}

	var res Result
	for i := headerIdx + 1; i < len(lines); i++ {
		raw := lines[i]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if isMarker(trimmed) {
			break
		}
		cells := strings.Split(raw, "\t")
		rawCell := func(name string) string {
			idx := cols[name]
			if idx >= len(cells) {
				return ""
			}
			return cells[idx]
		}
		cell := func(name string) string {
			return strings.TrimSpace(rawCell(name))
		}
		reason := rawCell(ColReason)
		if lenient {
			reason = strings.TrimSpace(reason)
		}
		a, err := buildAssignment(cell(ColReservationID), cell(ColAction), cell(ColNewTables), reason, cell(ColConfidence), lenient)
		if err != nil {
			res.Errors = append(res.Errors, ParseError{Line: i + 1, Message: err.Error(), Raw: raw})
			continue
		}
		res.Plan.Assignments = append(res.Plan.Assignments, a)
	}

	res.Plan.Notes = parseNotes(lines, lenient)
	return res
}

func buildAssignment(id, action, tables, reason, confidence string, lenient bool) (Assignment, error) {
	if id == "" {
		return Assignment{}, errMissingReservationID
	}
	act := Action(action)
	if lenient {
		act = Action(strings.ToLower(action))
	}
	if !act.Valid() {
		return Assignment{}, fmt.Errorf("invalid action %q", action)
	}
	ids, err := parseTables(tables, lenient)
	if err != nil {
		return Assignment{}, err
	}
	conf, err := strconv.ParseFloat(confidence, 64)
	if err != nil || math.IsNaN(conf) || conf < 0 || conf > 1 {
		return Assignment{}, fmt.Errorf("confidence %q must be a number between 0 and 1", confidence)
	}
	return Assignment{
		ReservationID: id,
		Action:        act,
		NewTables:     ids,
		Reason:        reason,
		Confidence:    conf,
	}, nil
}

func parseTables(cell string, lenient bool) ([]string, error) {
	if cell == "" {
		return nil, nil
	}
	var tokens []string
	if lenient {
		tokens = lenientTableSep.Split(strings.Trim(cell, "|, "), -1)
	} else {
		tokens = strings.Split(cell, "|")
	}
	ids := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if !tableIDPattern.MatchString(tok) {
			return nil, fmt.Errorf("invalid table id %q", tok)
		}
		ids = append(ids, tok)
	}
	return ids, nil
}

func parseNotes(lines []string, lenient bool) []string {
	marker := indexOfMarker(lines, SectionNotes, lenient)
	if marker < 0 {
		return nil
	}
	var notes []string
	for _, l := range lines[marker+1:] {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "##") {
			break
		}
		if lenient {
			l = strings.TrimSpace(strings.TrimLeft(l, "-*・"))
		}
		if l != "" {
			notes = append(notes, l)
		}
	}
	return notes
}

func isMarker(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "##")
}

func indexOfMarker(lines []string, marker string, lenient bool) int {
	for i, l := range lines {
		l = strings.TrimSpace(l)
		if l == marker || (lenient && strings.EqualFold(l, marker)) {
			return i
		}
	}
	return -1
}

func indexOfHeader(lines []string) int {
	for i, l := range lines {
		for _, c := range strings.Split(l, "\t") {
			if strings.EqualFold(strings.TrimSpace(c), ColReservationID) {
				return i
			}
		}
	}
	return -1
}

func nextNonBlank(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

// Serialize writes the plan in the format Parse reads. Confidence is written
// with two decimals.
func Serialize(p Plan) string {
	var b strings.Builder
	b.WriteString(SectionAssignments)
	b.WriteByte('\n')
	b.WriteString(strings.Join(Columns, "\t"))
	b.WriteByte('\n')
	for _, a := range p.Assignments {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%.2f\n",
			CleanCell(a.ReservationID),
			a.Action,
			strings.Join(a.NewTables, "|"),
			CleanCell(a.Reason),
			a.Confidence,
		)
	}
	b.WriteString(SectionNotes)
	b.WriteByte('\n')
	for _, n := range p.Notes {
		b.WriteString(CleanCell(n))
		b.WriteByte('\n')
	}
	return b.String()
}
