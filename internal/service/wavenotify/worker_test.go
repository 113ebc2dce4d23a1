package wavenotify

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

func TestWorker_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockFloorRepository(ctrl)
	sub := domain.NewMockReservationChangeSubscriber(ctrl)

	changes := make(chan domain.ReservationChange, 3)
	changes <- domain.ReservationChange{StoreID: "store-1", Day: "14/03/2025", ReservationID: "R1"}
	changes <- domain.ReservationChange{StoreID: "store-1", Day: "2025-03-14", ReservationID: "R2"}
	close(changes)

	sub.EXPECT().SubscribeReservationChanges(gomock.Any()).Return((<-chan domain.ReservationChange)(changes), nil)
	store.EXPECT().GetReservations(gomock.Any(), "store-1", serviceDay).Return(nil, nil).Times(1)
	store.EXPECT().GetCourses(gomock.Any(), "store-1").Return(nil, nil)
	store.EXPECT().GetWaveSettings(gomock.Any(), "store-1").Return(nil, nil)

	w := NewWorker(newTestService(store, nil, nil), sub)
	w.now = func() time.Time { return beforeOpen }

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestWorker_Run_SubscribeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := domain.NewMockReservationChangeSubscriber(ctrl)
	wantErr := errors.New("redis down")
	sub.EXPECT().SubscribeReservationChanges(gomock.Any()).Return(nil, wantErr)

	w := NewWorker(newTestService(nil, nil, nil), sub)
	if err := w.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestWorker_Run_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := domain.NewMockReservationChangeSubscriber(ctrl)
	changes := make(chan domain.ReservationChange)
	sub.EXPECT().SubscribeReservationChanges(gomock.Any()).Return((<-chan domain.ReservationChange)(changes), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewWorker(newTestService(nil, nil, nil), sub).Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
