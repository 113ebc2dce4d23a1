package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/timemath"
)

const (
	DefaultStayMinutes = 120
	GridMinutes        = 5
)

// Field names, in resolution priority order.
var (
	idFields            = []string{"id", "reservationId"}
	nameFields          = []string{"name", "guestName", "customerName"}
	guestFields         = []string{"guests", "pax", "partySize", "people"}
	numericStartFields  = []string{"startMs", "startAt", "start"}
	clockStartFields    = []string{"time", "startTime", "start"}
	dateStartFields     = []string{"startISO", "datetime", "date", "start"}
	endFields           = []string{"endMs", "endAt", "end"}
	durationFields      = []string{"durationMinutes", "duration"}
	courseFields        = []string{"course", "courseName"}
	stayFields          = []string{"stayMinutes"}
	tableFields         = []string{"tables", "tableIds", "table", "tableId", "tableNo", "assignedTables"}
	noteFields          = []string{"notes", "memo"}
	labelFields         = []string{"labels", "tags"}
	pinnedFields        = []string{"pinned", "locked"}
	dateLayoutsInAnchor = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}
)

// Normalizer maps raw reservation records onto Items for one service day.
type Normalizer struct {
	dayStartMs         int64
	loc                *time.Location
	courses            []domain.Course
	defaultStayMinutes int
}

func NewNormalizer(dayStartMs int64, loc *time.Location, courses []domain.Course) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{
		dayStartMs:         timemath.StartOfDayMs(dayStartMs, loc),
		loc:                loc,
		courses:            courses,
		defaultStayMinutes: DefaultStayMinutes,
	}
}

// Normalize resolves start, end, tables and flags of one record.
func (n *Normalizer) Normalize(rec domain.Record) (Item, error) {
	id := toString(first(rec, idFields))
	if id == "" {
		return Item{}, ErrMissingID
	}

	tables := n.resolveTables(rec)
	if len(tables) == 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrNoTables, id)
	}

	guests, _ := toInt(first(rec, guestFields))
	course := toString(first(rec, courseFields))

	start := n.resolveStart(rec)
	end := n.resolveEnd(rec, start, course)

	grid := int64(GridMinutes) * timemath.MinuteMs
	start = timemath.RoundToGrid(start, grid)
	end = max(timemath.RoundToGrid(end, grid), start)

	return Item{
		ID:       id,
		Name:     toString(first(rec, nameFields)),
		Guests:   guests,
		Tables:   tables,
		StartMs:  start,
		EndMs:    end,
		Arrived:  Truthy(rec["arrived"]),
		Paid:     Truthy(rec["paid"]),
		Departed: Truthy(rec["departed"]),
		Pinned:   Truthy(first(rec, pinnedFields)),
		Course:   course,
		Notes:    toString(first(rec, noteFields)),
		Labels:   collectStrings(first(rec, labelFields)),
	}, nil
}

// resolveStart: numeric start, then "HH:mm" on the anchor day, then a date
// string, then the anchor itself.
func (n *Normalizer) resolveStart(rec domain.Record) int64 {
	for _, key := range numericStartFields {
		if f, ok := toFloat(rec[key]); ok {
			return int64(f)
		}
	}
	for _, key := range clockStartFields {
		if s, ok := rec[key].(string); ok && timemath.LooksLikeHHmm(s) {
			return timemath.StartMsFromHHmmOnSameDay(n.dayStartMs, s, n.loc)
		}
	}
	for _, key := range dateStartFields {
		if s, ok := rec[key].(string); ok {
			if ms, ok := n.parseDate(s); ok {
				return ms
			}
		}
	}
	return n.dayStartMs
}

// resolveEnd: explicit end, duration, course stay, record stay, default.
func (n *Normalizer) resolveEnd(rec domain.Record, start int64, course string) int64 {
	for _, key := range endFields {
		switch v := rec[key].(type) {
		case string:
			if timemath.LooksLikeHHmm(v) {
				return timemath.StartMsFromHHmmOnSameDay(n.dayStartMs, v, n.loc)
			}
			if ms, ok := n.parseDate(v); ok {
				return ms
			}
		default:
			if f, ok := toFloat(v); ok {
				return int64(f)
			}
		}
	}

	stay := n.defaultStayMinutes
	if d, ok := positiveInt(first(rec, durationFields)); ok {
		stay = d
	} else if c, ok := domain.FindCourse(n.courses, course); ok && c.StayMinutes > 0 {
		stay = c.StayMinutes
	} else if s, ok := positiveInt(first(rec, stayFields)); ok {
		stay = s
	}
	return start + int64(stay)*timemath.MinuteMs
}

func (n *Normalizer) parseDate(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli(), true
	}
	for _, layout := range dateLayoutsInAnchor {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// resolveTables merges every table field, keeping first-seen order.
func (n *Normalizer) resolveTables(rec domain.Record) []string {
	var tables []string
	for _, key := range tableFields {
		for _, t := range collectStrings(rec[key]) {
			if !slices.Contains(tables, t) {
				tables = append(tables, t)
			}
		}
	}
	return tables
}

func first(rec domain.Record, keys []string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

func positiveInt(v any) (int, bool) {
	n, ok := toInt(v)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}
