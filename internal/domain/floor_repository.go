package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=floor_repository.go -destination=floor_repository_mock.go -package=domain

// FloorRepository reads and writes the floor documents of a store.
type FloorRepository interface {
	GetReservations(ctx context.Context, storeID string, day time.Time) ([]Record, error)
	// SaveReservation upserts a record and announces the change.
	SaveReservation(ctx context.Context, storeID string, day time.Time, record Record) error
	GetTables(ctx context.Context, storeID string) ([]Table, error)
	SaveTables(ctx context.Context, storeID string, tables []Table) error
	GetPolicy(ctx context.Context, storeID string) (*Policy, error)
	SavePolicy(ctx context.Context, storeID string, policy *Policy) error
	GetCourses(ctx context.Context, storeID string) ([]Course, error)
	SaveCourses(ctx context.Context, storeID string, courses []Course) error
	GetWaveSettings(ctx context.Context, storeID string) (*WaveSettings, error)
	SaveWaveSettings(ctx context.Context, storeID string, settings *WaveSettings) error
}

// NotificationLedger remembers which calm windows already produced a notification.
type NotificationLedger interface {
	// ClaimWindow returns true when the caller is the first to claim the window.
	ClaimWindow(ctx context.Context, storeID, positionID string, windowStart time.Time) (bool, error)
	ReleaseWindow(ctx context.Context, storeID, positionID string, windowStart time.Time) error
	// ClaimedWindows lists the claimed window starts in [from, to), ascending.
	ClaimedWindows(ctx context.Context, storeID, positionID string, from, to time.Time) ([]time.Time, error)
}

// ReservationChange is published whenever a reservation record is written.
type ReservationChange struct {
	StoreID       string    `json:"storeId"`
	Day           string    `json:"day"`
	ReservationID string    `json:"reservationId,omitempty"`
	ChangedAt     time.Time `json:"changedAt"`
}

// ReservationChangeSubscriber delivers changes until ctx is done, then
// closes the channel.
type ReservationChangeSubscriber interface {
	SubscribeReservationChanges(ctx context.Context) (<-chan ReservationChange, error)
}
