package pipeline

import (
	"context"

	queuesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/service"
)

// StatsSink nhận counter deltas của một orchestrator run.
// Tách interface để test orchestrator không cần datastore thật.
type StatsSink interface {
	IncrCounters(ctx context.Context, deltas map[string]int64) error
}

// storeStatsSink ghi counters vào document stats của queue store
type storeStatsSink struct {
	store *queuesvc.QueueStore
}

// NewStoreStatsSink tạo sink persist counters qua QueueStore
func NewStoreStatsSink(store *queuesvc.QueueStore) StatsSink {
	return &storeStatsSink{store: store}
}

func (s *storeStatsSink) IncrCounters(ctx context.Context, deltas map[string]int64) error {
	return s.store.IncrCounters(ctx, deltas)
}
