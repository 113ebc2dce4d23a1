package optimizer

import "github.com/KasumiMercury/primind-floor-operations/internal/seatplan"

// CheckCoverage lists context reservations absent from the plan and
// reservation ids the plan mentions more than once. Departed parties are
// not expected in a plan.
func CheckCoverage(plan seatplan.Plan, c *Context) (missing, duplicates []string) {
	counts := make(map[string]int, len(plan.Assignments))
	for _, a := range plan.Assignments {
		counts[a.ReservationID]++
		if counts[a.ReservationID] == 2 {
			duplicates = append(duplicates, a.ReservationID)
		}
	}
	if c == nil {
		return missing, duplicates
	}
	for _, r := range c.Reservations {
		if r.Departed {
			continue
		}
		if counts[r.ID] == 0 {
			missing = append(missing, r.ID)
		}
	}
	return missing, duplicates
}
