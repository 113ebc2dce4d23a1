package optimizer

import (
	"strings"

	"github.com/KasumiMercury/primind-floor-operations/internal/seatplan"
)

const draftInstructions = `You assign restaurant reservations to tables.
The user message holds ##RESERVATIONS, ##TABLES and ##PROMPTS sections as tab separated rows.
Answer with exactly two sections and nothing else:
##ASSIGNMENTS followed by the header row
reservation_id	action	new_tables	reason	confidence
one row per reservation, action is keep, move, split or cancel, new_tables joins table ids with |, confidence is between 0 and 1;
then ##NOTES followed by free text lines.
Never give a party of one or two guests more than one table.
Never change the tables of a reservation marked arrived.`

const repairInstructions = `You fix seat assignment answers that break the output format.
Return the corrected answer starting with ##ASSIGNMENTS, keeping every decision of the draft that is valid.
Use tab separated rows with the header
reservation_id	action	new_tables	reason	confidence
and end with a ##NOTES section.`

// draftSystemPrompt appends the store's base prompt to the fixed contract.
func draftSystemPrompt(c *Context) string {
	if c == nil || c.Policy == nil || strings.TrimSpace(c.Policy.BasePrompt) == "" {
		return draftInstructions
	}
	return draftInstructions + "\n\n" + strings.TrimSpace(c.Policy.BasePrompt)
}

func repairUserPrompt(payload, draft string) string {
	var b strings.Builder
	b.WriteString(payload)
	if !strings.HasSuffix(payload, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("##DRAFT\n")
	b.WriteString(draft)
	return b.String()
}

// looksLikePlan accepts repair output only when it opens with the
// assignments marker.
func looksLikePlan(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), seatplan.SectionAssignments)
}
