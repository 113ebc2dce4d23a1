package optimizer

import (
	"strconv"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/seatplan"
)

const (
	SectionReservations = "##RESERVATIONS"
	SectionTables       = "##TABLES"
	SectionPrompts      = "##PROMPTS"

	localDateTimeLayout = "2006-01-02T15:04"
)

var (
	reservationColumns = []string{"id", "start", "end", "stay_minutes", "guests", "tables", "arrived", "departed", "locked_reason", "notes"}
	tableColumns       = []string{"id", "capacity", "areas", "avoid_late"}
	promptColumns      = []string{"kind", "text"}
)

type PayloadInput struct {
	Reservations   []domain.Reservation
	Tables         []domain.Table
	BasePrompt     string
	OverridePrompt string
	Location       *time.Location
}

// BuildPayload renders the request document sent to the generator. Every
// cell is stripped of tabs and line breaks.
func BuildPayload(in PayloadInput) string {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	writeSection(&b, SectionReservations, reservationColumns)
	for _, r := range in.Reservations {
		writeRow(&b,
			r.ID,
			r.Start.In(loc).Format(localDateTimeLayout),
			r.End.In(loc).Format(localDateTimeLayout),
			strconv.Itoa(r.StayMinutes()),
			strconv.Itoa(r.Guests),
			strings.Join(r.Tables, "|"),
			strconv.FormatBool(r.Arrived),
			strconv.FormatBool(r.Departed),
			r.LockedReason(),
			r.Notes,
		)
	}

	writeSection(&b, SectionTables, tableColumns)
	for _, t := range in.Tables {
		capacity := ""
		if t.Capacity > 0 {
			capacity = strconv.Itoa(t.Capacity)
		}
		writeRow(&b, t.ID, capacity, strings.Join(t.Areas, "|"), strconv.FormatBool(t.AvoidLate))
	}

	writeSection(&b, SectionPrompts, promptColumns)
	if in.BasePrompt != "" {
		writeRow(&b, "base", in.BasePrompt)
	}
	if in.OverridePrompt != "" {
		writeRow(&b, "override", in.OverridePrompt)
	}
	return b.String()
}

func writeSection(b *strings.Builder, marker string, columns []string) {
	b.WriteString(marker)
	b.WriteByte('\n')
	b.WriteString(strings.Join(columns, "\t"))
	b.WriteByte('\n')
}

func writeRow(b *strings.Builder, cells ...string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(seatplan.CleanCell(c))
	}
	b.WriteByte('\n')
}
