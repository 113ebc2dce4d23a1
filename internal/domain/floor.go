package domain

import (
	"slices"
	"time"
)

// Record is a raw reservation document as stored by the floor app.
// Field names vary between app versions; schedule.Normalizer resolves them.
type Record map[string]any

// Reservation is the optimizer's view of a booking.
type Reservation struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Guests   int       `json:"guests"`
	Tables   []string  `json:"tables"`
	Arrived  bool      `json:"arrived,omitempty"`
	Departed bool      `json:"departed,omitempty"`
	Pinned   bool      `json:"pinned,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

// Locked reports whether the optimizer must leave the table assignment alone.
func (r Reservation) Locked() bool {
	return r.Arrived || r.Pinned
}

// StayMinutes returns the planned stay length, never negative.
func (r Reservation) StayMinutes() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start) / time.Minute)
}

// LockedReason is "arrived", "departed" or empty.
func (r Reservation) LockedReason() string {
	switch {
	case r.Arrived:
		return "arrived"
	case r.Departed:
		return "departed"
	default:
		return ""
	}
}

type Table struct {
	ID        string   `json:"id"`
	Capacity  int      `json:"capacity"`
	Areas     []string `json:"areas,omitempty"`
	AvoidLate bool     `json:"avoidLate,omitempty"`
}

// Joinable describes tables that may be combined and their combined capacity.
type Joinable struct {
	Tables []string `json:"tables"`
	Max    int      `json:"max"`
}

// Matches reports whether tables is exactly the group's table set.
func (j Joinable) Matches(tables []string) bool {
	if len(tables) != len(j.Tables) {
		return false
	}
	for _, t := range tables {
		if !slices.Contains(j.Tables, t) {
			return false
		}
	}
	return true
}

type Policy struct {
	Joinables  []Joinable `json:"joinables"`
	BasePrompt string     `json:"basePrompt,omitempty"`
}

// CourseTask is a staff task fired at a fixed offset after seating.
type CourseTask struct {
	Label         string `json:"label"`
	OffsetMinutes int    `json:"offsetMinutes"`
	PositionID    string `json:"positionId"`
}

type Course struct {
	Name        string       `json:"name"`
	StayMinutes int          `json:"stayMinutes"`
	Tasks       []CourseTask `json:"tasks,omitempty"`
}

// FindCourse returns the course with the given name.
func FindCourse(courses []Course, name string) (Course, bool) {
	if name == "" {
		return Course{}, false
	}
	for _, c := range courses {
		if c.Name == name {
			return c, true
		}
	}
	return Course{}, false
}

// WaveSettings are the per-store calm-window notification parameters.
type WaveSettings struct {
	PositionIDs        []string `json:"positionIds"`
	VisibleTables      []string `json:"visibleTables,omitempty"`
	BucketMinutes      int      `json:"bucketMinutes"`
	Threshold          int      `json:"threshold"`
	MinCalmMinutes     int      `json:"minCalmMinutes"`
	NotifyDelayMinutes int      `json:"notifyDelayMinutes"`
}
