package wavenotify

import (
	"context"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

// Worker re-evaluates a store's day whenever one of its reservations changes.
type Worker struct {
	service    *Service
	subscriber domain.ReservationChangeSubscriber
	now        func() time.Time
}

func NewWorker(service *Service, subscriber domain.ReservationChangeSubscriber) *Worker {
	return &Worker{
		service:    service,
		subscriber: subscriber,
		now:        time.Now,
	}
}

// Run blocks until ctx is canceled or the subscription closes.
func (w *Worker) Run(ctx context.Context) error {
	changes, err := w.subscriber.SubscribeReservationChanges(ctx)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "wave notification worker started")

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "wave notification worker stopped")
			return nil
		case change, ok := <-changes:
			if !ok {
				slog.InfoContext(ctx, "reservation change subscription closed")
				return nil
			}
			w.handle(ctx, change)
		}
	}
}

func (w *Worker) handle(ctx context.Context, change domain.ReservationChange) {
	day, err := time.ParseInLocation(time.DateOnly, change.Day, w.service.cfg.Location)
	if err != nil {
		slog.WarnContext(ctx, "ignoring reservation change with invalid day",
			slog.String("store_id", change.StoreID),
			slog.String("day", change.Day),
		)
		return
	}

	if _, err := w.service.Evaluate(ctx, change.StoreID, day, w.now()); err != nil {
		slog.ErrorContext(ctx, "failed to evaluate calm windows",
			slog.String("store_id", change.StoreID),
			slog.String("day", change.Day),
			slog.String("reservation_id", change.ReservationID),
			slog.String("error", err.Error()),
		)
	}
}
