package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	queuemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
)

// RetryStore là phần của queue store mà retry manager cần
type RetryStore interface {
	Remove(ctx context.Context, item queuemodels.QueueItem) error
	Requeue(ctx context.Context, item queuemodels.QueueItem) (queuemodels.QueueItem, error)
	MoveToDeadLetter(ctx context.Context, item queuemodels.QueueItem, lastError string) error
}

// RetryManager áp dụng bounded-retry-with-tail-requeue cho queue jobs:
// fail thì attempts+1 và reinsert về cuối queue, đủ 3 lần thì chuyển dead-letter.
// Không có exponential backoff ở tầng này.
type RetryManager struct {
	store       RetryStore
	maxAttempts int
	log         *logrus.Logger
}

func NewRetryManager(store RetryStore, maxAttempts int) *RetryManager {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &RetryManager{
		store:       store,
		maxAttempts: maxAttempts,
		log:         logger.GetAppLogger(),
	}
}

// Settle chốt số phận của một item sau một lần xử lý.
// jobErr == nil: remove khỏi queue. jobErr != nil: requeue về cuối hoặc
// dead-letter nếu hết retry budget. Item không bao giờ mất im lặng.
func (m *RetryManager) Settle(ctx context.Context, item queuemodels.QueueItem, jobErr error) error {
	if jobErr == nil {
		return m.store.Remove(ctx, item)
	}

	if item.Attempts+1 >= m.maxAttempts {
		m.log.Warnf("⚙️ [PIPELINE] Item %s hết retry budget (%d lần), chuyển dead-letter: %v", item.ID.Hex(), m.maxAttempts, jobErr)
		item.Attempts++ // Dead letter lưu số attempt cuối cùng
		return m.store.MoveToDeadLetter(ctx, item, jobErr.Error())
	}

	m.log.Warnf("⚙️ [PIPELINE] Item %s thất bại lần %d, requeue về cuối: %v", item.ID.Hex(), item.Attempts+1, jobErr)
	_, err := m.store.Requeue(ctx, item)
	return err
}
