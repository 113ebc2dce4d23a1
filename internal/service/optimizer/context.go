package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/schedule"
	"github.com/KasumiMercury/primind-floor-operations/internal/timemath"
)

// Validate rejects snapshots the post-pass cannot reason about.
func (c *Context) Validate() error {
	for i, r := range c.Reservations {
		if r.ID == "" {
			return fmt.Errorf("%w: reservation %d has no id", domain.ErrInvalidContext, i)
		}
		if r.Guests < 0 {
			return fmt.Errorf("%w: reservation %s has negative guests", domain.ErrInvalidContext, r.ID)
		}
	}
	for i, t := range c.Tables {
		if t.ID == "" {
			return fmt.Errorf("%w: table %d has no id", domain.ErrInvalidContext, i)
		}
		if t.Capacity < 0 {
			return fmt.Errorf("%w: table %s has negative capacity", domain.ErrInvalidContext, t.ID)
		}
	}
	if c.Policy != nil {
		for i, g := range c.Policy.Joinables {
			if len(g.Tables) == 0 || g.Max < 0 {
				return fmt.Errorf("%w: joinable group %d is malformed", domain.ErrInvalidContext, i)
			}
		}
	}
	return nil
}

// ReservationsFromRecords normalizes raw store records into reservations.
// Records without an id or tables are dropped.
func ReservationsFromRecords(records []domain.Record, day time.Time, loc *time.Location, courses []domain.Course) []domain.Reservation {
	n := schedule.NewNormalizer(timemath.StartOfDayMs(day.UnixMilli(), loc), loc, courses)
	out := make([]domain.Reservation, 0, len(records))
	for _, rec := range records {
		item, err := n.Normalize(rec)
		if err != nil {
			continue
		}
		out = append(out, domain.Reservation{
			ID:       item.ID,
			Name:     item.Name,
			Start:    time.UnixMilli(item.StartMs).In(loc),
			End:      time.UnixMilli(item.EndMs).In(loc),
			Guests:   item.Guests,
			Tables:   item.Tables,
			Arrived:  item.Arrived,
			Departed: item.Departed,
			Pinned:   item.Pinned,
			Notes:    item.Notes,
		})
	}
	return out
}

// LoadContext reads the floor snapshot of a store for one service day.
func (s *Service) LoadContext(ctx context.Context, storeID string, day time.Time) (*Context, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDMissing
	}
	if s.store == nil {
		return nil, fmt.Errorf("load context for %s: %w", storeID, domain.ErrStoreNotFound)
	}

	tables, err := s.store.GetTables(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	records, err := s.store.GetReservations(ctx, storeID, day)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	courses, err := s.store.GetCourses(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	policy, err := s.store.GetPolicy(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	return &Context{
		Reservations: ReservationsFromRecords(records, day, s.cfg.Location, courses),
		Tables:       tables,
		Policy:       policy,
	}, nil
}

// resolveContext prefers the snapshot sent with the request and falls back
// to the store. A nil context disables coverage and capacity checks.
func (s *Service) resolveContext(ctx context.Context, req Request) (*Context, error) {
	if req.Context != nil {
		if err := req.Context.Validate(); err != nil {
			return nil, err
		}
		return req.Context, nil
	}
	if req.StoreID == "" {
		return nil, nil
	}
	return s.LoadContext(ctx, req.StoreID, s.dayOf(req.Day))
}

func (s *Service) dayOf(day time.Time) time.Time {
	if day.IsZero() {
		day = s.now()
	}
	return day.In(s.cfg.Location)
}
