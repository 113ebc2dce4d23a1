package optimizer

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/seatplan"
)

// CapacitySource decides which number wins when a table set has both solo
// capacities and a declared joinable-group max.
type CapacitySource string

const (
	CapacityFromGroup CapacitySource = "group"
	CapacityFromSolo  CapacitySource = "solo"
)

type RepairOptions struct {
	PartySizes map[string]int
	Capacities map[string]int
	Joinables  []domain.Joinable

	// Locked maps arrived or pinned reservations to the tables they hold.
	Locked map[string][]string

	AutoRepair       bool
	OptimizeByPolicy bool
	CapacitySource   CapacitySource
}

// OptionsFromContext derives party sizes, capacities, joinables and locks
// from a floor snapshot.
func OptionsFromContext(c *Context, autoRepair, optimizeByPolicy bool, source CapacitySource) RepairOptions {
	opts := RepairOptions{
		PartySizes:       make(map[string]int),
		Capacities:       make(map[string]int),
		Locked:           make(map[string][]string),
		AutoRepair:       autoRepair,
		OptimizeByPolicy: optimizeByPolicy,
		CapacitySource:   source,
	}
	if c == nil {
		return opts
	}
	for _, r := range c.Reservations {
		opts.PartySizes[r.ID] = r.Guests
		if r.Locked() {
			opts.Locked[r.ID] = slices.Clone(r.Tables)
		}
	}
	for _, t := range c.Tables {
		if t.Capacity > 0 {
			opts.Capacities[t.ID] = t.Capacity
		}
	}
	if c.Policy != nil {
		opts.Joinables = c.Policy.Joinables
	}
	return opts
}

type RepairResult struct {
	Plan         seatplan.Plan
	Warnings     []Warning
	AutoRepaired bool
}

// Repair runs the deterministic post-pass over a copy of plan: table
// dedupe, the small-party rule, over-allocation and, when enabled,
// joinable-group optimization. Locked rows keep their tables. The input plan
// is not modified and repairing the result again changes nothing.
func Repair(plan seatplan.Plan, opts RepairOptions) RepairResult {
	out := plan.Clone()
	r := &repairer{opts: opts, plan: &out}

	for i := range out.Assignments {
		r.dedupe(i)
		if r.locked(out.Assignments[i]) {
			continue
		}
		r.smallParty(i)
		r.overAllocation(i)
	}
	if opts.OptimizeByPolicy && len(opts.Joinables) > 0 {
		// A move can free tables for an earlier row, so sweep until stable.
		// Every move strictly improves its row, which bounds the sweeps.
		for sweep := 0; sweep <= len(out.Assignments)*len(opts.Joinables); sweep++ {
			if !r.optimizeByPolicy() {
				break
			}
		}
	}

	return RepairResult{Plan: out, Warnings: r.warnings, AutoRepaired: r.changed}
}

type repairer struct {
	opts     RepairOptions
	plan     *seatplan.Plan
	warnings []Warning
	changed  bool
}

func (r *repairer) warn(i int, code, message string) {
	r.warnings = append(r.warnings, Warning{
		Index:         i,
		ReservationID: r.plan.Assignments[i].ReservationID,
		Code:          code,
		Message:       message,
	})
}

// change records a warning for a modification already applied to row i.
func (r *repairer) change(i int, code, message, reasonSuffix string) {
	r.warn(i, code, message)
	a := &r.plan.Assignments[i]
	if a.Reason == "" {
		a.Reason = reasonSuffix
	} else {
		a.Reason += " [" + reasonSuffix + "]"
	}
	r.changed = true
}

func (r *repairer) locked(a seatplan.Assignment) bool {
	_, ok := r.opts.Locked[a.ReservationID]
	return ok
}

func (r *repairer) party(a seatplan.Assignment) int {
	return r.opts.PartySizes[a.ReservationID]
}

func (r *repairer) capacity(table string) (int, bool) {
	c, ok := r.opts.Capacities[table]
	return c, ok && c > 0
}

// soloCapacities returns per-table capacities and their sum when every
// table's capacity is known.
func (r *repairer) soloCapacities(tables []string) ([]int, int, bool) {
	caps := make([]int, len(tables))
	total := 0
	for k, t := range tables {
		c, ok := r.capacity(t)
		if !ok {
			return nil, 0, false
		}
		caps[k] = c
		total += c
	}
	return caps, total, len(tables) > 0
}

func (r *repairer) dedupe(i int) {
	a := &r.plan.Assignments[i]
	seen := make(map[string]bool, len(a.NewTables))
	unique := make([]string, 0, len(a.NewTables))
	var dups []string
	for _, t := range a.NewTables {
		if seen[t] {
			dups = append(dups, t)
			continue
		}
		seen[t] = true
		unique = append(unique, t)
	}
	if len(dups) == 0 {
		return
	}
	a.NewTables = unique
	r.change(i, CodeDupTable, "duplicate tables removed: "+strings.Join(dups, "|"), "duplicate tables removed")
}

func (r *repairer) smallParty(i int) {
	a := &r.plan.Assignments[i]
	party := r.party(*a)
	if party < 1 || party > 2 || a.Action == seatplan.ActionCancel {
		return
	}
	if len(a.NewTables) <= 1 && a.Action != seatplan.ActionSplit {
		return
	}

	if len(a.NewTables) > 1 {
		chosen := a.NewTables[0]
		for _, t := range a.NewTables {
			if c, ok := r.capacity(t); ok && c >= party {
				chosen = t
				break
			}
		}
		a.NewTables = []string{chosen}
	}
	if a.Action == seatplan.ActionSplit || a.Action == seatplan.ActionKeep {
		a.Action = seatplan.ActionMove
	}

	table := strings.Join(a.NewTables, "|")
	r.change(i, CodeSmallPartySplit,
		fmt.Sprintf("party of %d must use a single table; kept %s", party, table),
		"single table for party of "+fmt.Sprint(party),
	)
}

// reduce greedily drops the largest tables while the rest still seat the
// party. It returns the remaining tables in their original order and false
// when nothing can be dropped or capacities are incomplete.
func (r *repairer) reduce(tables []string, party int) ([]string, bool) {
	if len(tables) < 2 || party <= 0 {
		return nil, false
	}
	caps, total, ok := r.soloCapacities(tables)
	if !ok || total < party {
		return nil, false
	}

	order := make([]int, len(tables))
	for k := range order {
		order[k] = k
	}
	slices.SortStableFunc(order, func(x, y int) int {
		return cmp.Compare(caps[y], caps[x])
	})

	dropped := make([]bool, len(tables))
	n := 0
	for _, k := range order {
		if total-caps[k] >= party {
			dropped[k] = true
			total -= caps[k]
			n++
		}
	}
	if n == 0 {
		return nil, false
	}

	kept := make([]string, 0, len(tables)-n)
	for k, t := range tables {
		if !dropped[k] {
			kept = append(kept, t)
		}
	}
	return kept, true
}

func (r *repairer) overAllocation(i int) {
	a := &r.plan.Assignments[i]
	if a.Action == seatplan.ActionCancel {
		return
	}
	party := r.party(*a)
	kept, ok := r.reduce(a.NewTables, party)
	if !ok {
		return
	}

	_, total, _ := r.soloCapacities(a.NewTables)
	message := fmt.Sprintf("tables %s seat %d for a party of %d; %s is enough",
		strings.Join(a.NewTables, "|"), total, party, strings.Join(kept, "|"))
	if !r.opts.AutoRepair {
		r.warn(i, CodeOverAllocation, message)
		return
	}

	a.NewTables = kept
	if a.Action == seatplan.ActionKeep || (a.Action == seatplan.ActionSplit && len(kept) == 1) {
		a.Action = seatplan.ActionMove
	}
	r.change(i, CodeOverAllocation, message, "reduced to "+strings.Join(kept, "|"))
}

func (r *repairer) groupFor(tables []string) (domain.Joinable, bool) {
	for _, g := range r.opts.Joinables {
		if g.Matches(tables) {
			return g, true
		}
	}
	return domain.Joinable{}, false
}

// assignedCapacity resolves the seating capacity of a table set according to
// the configured CapacitySource.
func (r *repairer) assignedCapacity(tables []string) (int, bool) {
	g, grouped := r.groupFor(tables)
	_, total, solo := r.soloCapacities(tables)

	if r.opts.CapacitySource == CapacityFromSolo {
		if solo {
			return total, true
		}
		return g.Max, grouped
	}
	if grouped {
		return g.Max, true
	}
	return total, solo
}

// surplus of the current assignment. Empty or undersized table sets count
// as infinitely bad; sets with unknown capacity cannot be compared.
func (r *repairer) surplus(tables []string, party int) (int, bool) {
	if len(tables) == 0 {
		return math.MaxInt, true
	}
	c, ok := r.assignedCapacity(tables)
	if !ok {
		return 0, false
	}
	if c < party {
		return math.MaxInt, true
	}
	return c - party, true
}

type candidate struct {
	tables  []string
	max     int
	surplus int
	key     string
}

func (r *repairer) bestCandidate(i, party int, usage TableUsage) (candidate, bool) {
	var best candidate
	found := false
	for _, g := range r.opts.Joinables {
		if len(g.Tables) == 0 || (party <= 2 && len(g.Tables) > 1) {
			continue
		}
		capacity, ok := r.assignedCapacity(g.Tables)
		if !ok || capacity < party {
			continue
		}
		if !usage.AllFreeFor(g.Tables, i) {
			continue
		}
		if _, reducible := r.reduce(g.Tables, party); reducible {
			continue
		}

		c := candidate{tables: g.Tables, max: capacity, surplus: capacity - party, key: strings.Join(g.Tables, "|")}
		if !found || compareCandidates(c, best) < 0 {
			best = c
			found = true
		}
	}
	return best, found
}

func compareCandidates(a, b candidate) int {
	return cmp.Or(
		cmp.Compare(a.surplus, b.surplus),
		cmp.Compare(len(a.tables), len(b.tables)),
		cmp.Compare(a.key, b.key),
	)
}

// optimizeByPolicy makes one sweep moving each row to the best free joinable
// group when that strictly lowers its surplus, or keeps the surplus with
// fewer tables. Rows are visited in plan order and accepted moves update the
// usage map seen by later rows. It reports whether any row moved.
func (r *repairer) optimizeByPolicy() bool {
	moved := false
	usage := NewTableUsage(r.plan.Assignments)
	for _, locked := range r.opts.Locked {
		usage.Claim(lockedHolder, locked)
	}

	for i := range r.plan.Assignments {
		a := &r.plan.Assignments[i]
		if a.Action == seatplan.ActionCancel {
			continue
		}
		if r.locked(*a) {
			continue
		}
		party := r.party(*a)
		if party <= 0 {
			continue
		}

		current, comparable := r.surplus(a.NewTables, party)
		if !comparable {
			continue
		}
		best, ok := r.bestCandidate(i, party, usage)
		if !ok || sameSet(best.tables, a.NewTables) {
			continue
		}
		if best.surplus > current || (best.surplus == current && len(best.tables) >= len(a.NewTables)) {
			continue
		}

		before := strings.Join(a.NewTables, "|")
		usage.Release(i, a.NewTables)
		usage.Claim(i, best.tables)
		a.NewTables = slices.Clone(best.tables)
		if len(a.NewTables) > 1 {
			a.Action = seatplan.ActionSplit
		} else {
			a.Action = seatplan.ActionMove
		}

		r.change(i, CodePolicyOptimized,
			fmt.Sprintf("moved from %q to %s (max %d, surplus %d)", before, best.key, best.max, best.surplus),
			fmt.Sprintf("policy: %s max %d", best.key, best.max),
		)
		moved = true
	}
	return moved
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, t := range a {
		if !slices.Contains(b, t) {
			return false
		}
	}
	return true
}
