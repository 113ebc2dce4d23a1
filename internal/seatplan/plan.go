// Package seatplan reads and writes the tab-separated seat assignment plan
// exchanged with the text generator.
package seatplan

import (
	"slices"
	"strconv"
	"strings"
)

type Action string

const (
	ActionKeep   Action = "keep"
	ActionMove   Action = "move"
	ActionSplit  Action = "split"
	ActionCancel Action = "cancel"
)

func (a Action) Valid() bool {
	switch a {
	case ActionKeep, ActionMove, ActionSplit, ActionCancel:
		return true
	default:
		return false
	}
}

// Assignment is one row of the plan.
type Assignment struct {
	ReservationID string   `json:"reservation_id"`
	Action        Action   `json:"action"`
	NewTables     []string `json:"new_tables"`
	Reason        string   `json:"reason"`
	Confidence    float64  `json:"confidence"`
}

type Plan struct {
	Assignments []Assignment `json:"assignments"`
	Notes       []string     `json:"notes"`
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := Plan{Notes: slices.Clone(p.Notes)}
	if p.Assignments != nil {
		out.Assignments = make([]Assignment, len(p.Assignments))
		for i, a := range p.Assignments {
			a.NewTables = slices.Clone(a.NewTables)
			out.Assignments[i] = a
		}
	}
	return out
}

// ParseError describes a rejected row or a structural problem.
// Line is 1-based; 0 means the document as a whole.
type ParseError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"`
}

func (e ParseError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return "line " + strconv.Itoa(e.Line) + ": " + e.Message
}

// Result is the outcome of a parse. When Fatal is set the plan is empty.
type Result struct {
	Plan   Plan         `json:"plan"`
	Errors []ParseError `json:"errors,omitempty"`
	Fatal  bool         `json:"fatal,omitempty"`
}

var cellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// CleanCell replaces tabs and line breaks so a value stays inside its cell.
func CleanCell(s string) string {
	return cellReplacer.Replace(s)
}
