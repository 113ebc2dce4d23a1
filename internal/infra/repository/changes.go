package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

type reservationChangeSubscriber struct {
	client *redis.Client
}

func NewReservationChangeSubscriber(client *redis.Client) domain.ReservationChangeSubscriber {
	return &reservationChangeSubscriber{client: client}
}

// SubscribeReservationChanges returns once the subscription is confirmed.
// Malformed messages are logged and dropped.
func (s *reservationChangeSubscriber) SubscribeReservationChanges(ctx context.Context) (<-chan domain.ReservationChange, error) {
	sub := s.client.Subscribe(ctx, ReservationChangesChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan domain.ReservationChange)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Close(); err != nil {
				slog.WarnContext(ctx, "failed to close reservation change subscription",
					slog.String("error", err.Error()),
				)
			}
		}()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change domain.ReservationChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil || change.StoreID == "" {
					slog.WarnContext(ctx, "dropping malformed reservation change",
						slog.String("channel", msg.Channel),
						slog.Int("payload_bytes", len(msg.Payload)),
					)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
