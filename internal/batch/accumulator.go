package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	queuemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
)

// BatchStore là phần của queue store mà accumulator cần
type BatchStore interface {
	AppendToBatch(ctx context.Context, batch queuemodels.PendingBatch, msg queuemodels.BatchMessage) (queuemodels.PendingBatch, error)
}

// Accumulator gom các inbound message theo conversation trong debounce window.
// Append không trigger xử lý gì — maturity chỉ đánh giá trong orchestrator run.
type Accumulator struct {
	store BatchStore
	log   *logrus.Logger
}

func NewAccumulator(store BatchStore) *Accumulator {
	return &Accumulator{
		store: store,
		log:   logger.GetAppLogger(),
	}
}

// Append thêm một inbound message vào batch của conversation, tạo batch nếu chưa có.
// Upsert atomic nên webhook đồng thời không mất message.
func (a *Accumulator) Append(ctx context.Context, batch queuemodels.PendingBatch, msg queuemodels.BatchMessage) error {
	result, err := a.store.AppendToBatch(ctx, batch, msg)
	if err != nil {
		return fmt.Errorf("không append được vào batch: %w", err)
	}
	a.log.Infof("🧵 [BATCH] Conversation %s hiện có %d message trong batch", result.ConversationID.Hex(), len(result.Messages))
	return nil
}

// IsMature kiểm tra batch đã qua debounce window chưa: now - lastUpdated ≥ window.
// Window mới reset mỗi lần có inbound message mới (lastUpdated được bump khi append).
func IsMature(batch queuemodels.PendingBatch, windowSeconds int, now time.Time) bool {
	return now.Unix()-batch.LastUpdated >= int64(windowSeconds)
}
