package runrecorder

import (
	"context"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.RunRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordRun(_ context.Context, _ domain.OptimizerRunRecord) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
