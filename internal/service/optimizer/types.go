package optimizer

import (
	"time"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/seatplan"
)

const (
	ModeConvert = "convert"
	ModePreview = "preview"
)

// Warning codes emitted by the post-pass.
const (
	CodeDupTable        = "DUP_TABLE"
	CodeSmallPartySplit = "SMALL_PARTY_SPLIT"
	CodeOverAllocation  = "OVER_ALLOCATION"
	CodePolicyOptimized = "POLICY_OPTIMIZED"
)

// Context is the floor snapshot a plan is checked against.
type Context struct {
	Reservations []domain.Reservation `json:"reservations"`
	Tables       []domain.Table       `json:"tables"`
	Policy       *domain.Policy       `json:"policy,omitempty"`
}

type Request struct {
	Payload          string
	StoreID          string
	Day              time.Time
	Context          *Context
	Strict           bool
	AutoRepair       bool
	OptimizeByPolicy bool
	Repair           bool
}

type Warning struct {
	Index         int    `json:"index"`
	ReservationID string `json:"reservation_id"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

type Response struct {
	RunID        string                `json:"runId"`
	Plan         seatplan.Plan         `json:"plan"`
	Errors       []seatplan.ParseError `json:"errors,omitempty"`
	Warnings     []Warning             `json:"warnings,omitempty"`
	Missing      []string              `json:"missing,omitempty"`
	Duplicates   []string              `json:"duplicates,omitempty"`
	AutoRepaired bool                  `json:"autoRepaired"`
}
