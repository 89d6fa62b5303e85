// Package queuesvc chứa QueueStore — data access cho job queues, pending batches,
// dead-letter queue và pipeline counters. Mọi mutable state của pipeline nằm ở đây
// (hoặc trong datastore), không component nào giữ state in-process giữa các run.
package queuesvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/base/service"
	queuemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
)

// QueueStore quản lý các queue collection của pipeline.
// Semantics: FIFO theo createdAt trong từng queue name, remove exact-match theo _id.
// Không đảm bảo exactly-once — consumer phải idempotent (xem processor media).
type QueueStore struct {
	queue       *basesvc.BaseServiceMongoImpl[queuemodels.QueueItem]
	deadLetters *basesvc.BaseServiceMongoImpl[queuemodels.DeadLetterItem]
	batches     *basesvc.BaseServiceMongoImpl[queuemodels.PendingBatch]
	stats       *basesvc.BaseServiceMongoImpl[queuemodels.PipelineStats]
}

// NewQueueStore tạo mới QueueStore từ các collection đã đăng ký
func NewQueueStore() (*QueueStore, error) {
	queueCol, exist := global.RegistryCollections.Get(global.ColNames.PipelineQueue)
	if !exist {
		return nil, fmt.Errorf("failed to get pipeline_queue collection: %w", common.ErrNotFound)
	}
	dlqCol, exist := global.RegistryCollections.Get(global.ColNames.PipelineDeadLetters)
	if !exist {
		return nil, fmt.Errorf("failed to get pipeline_dead_letters collection: %w", common.ErrNotFound)
	}
	batchCol, exist := global.RegistryCollections.Get(global.ColNames.PipelineBatches)
	if !exist {
		return nil, fmt.Errorf("failed to get pipeline_batches collection: %w", common.ErrNotFound)
	}
	statsCol, exist := global.RegistryCollections.Get(global.ColNames.PipelineStats)
	if !exist {
		return nil, fmt.Errorf("failed to get pipeline_stats collection: %w", common.ErrNotFound)
	}

	return &QueueStore{
		queue:       basesvc.NewBaseServiceMongo[queuemodels.QueueItem](queueCol),
		deadLetters: basesvc.NewBaseServiceMongo[queuemodels.DeadLetterItem](dlqCol),
		batches:     basesvc.NewBaseServiceMongo[queuemodels.PendingBatch](batchCol),
		stats:       basesvc.NewBaseServiceMongo[queuemodels.PipelineStats](statsCol),
	}, nil
}

// ====================================
// JOB QUEUE (FIFO list semantics)
// ====================================

// Enqueue thêm item vào cuối queue
func (s *QueueStore) Enqueue(ctx context.Context, queueName string, item queuemodels.QueueItem) (queuemodels.QueueItem, error) {
	item.ID = primitive.NilObjectID
	item.Queue = queueName
	return s.queue.InsertOne(ctx, item)
}

// PeekBatch đọc tối đa n items đầu queue (không destructive)
func (s *QueueStore) PeekBatch(ctx context.Context, queueName string, n int) ([]queuemodels.QueueItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(n))
	return s.queue.Find(ctx, bson.M{"queue": queueName}, opts)
}

// Remove xóa item khỏi queue theo _id (gọi sau khi xử lý thành công)
func (s *QueueStore) Remove(ctx context.Context, item queuemodels.QueueItem) error {
	return s.queue.DeleteOne(ctx, bson.M{"_id": item.ID})
}

// Requeue xóa item khỏi vị trí hiện tại và chèn lại vào cuối queue với
// attempts+1 và lastAttemptAt mới. Item lỗi sẽ được thử lại ở run sau,
// sau các item khác — một item hỏng không làm nghẽn queue.
func (s *QueueStore) Requeue(ctx context.Context, item queuemodels.QueueItem) (queuemodels.QueueItem, error) {
	if err := s.queue.DeleteOne(ctx, bson.M{"_id": item.ID}); err != nil {
		return queuemodels.QueueItem{}, fmt.Errorf("failed to remove item for requeue: %w", err)
	}

	now := time.Now().Unix()
	item.ID = primitive.NilObjectID
	item.Attempts++
	item.LastAttemptAt = now
	// InsertOne set createdAt mới → item về cuối queue (tail reinsert)
	return s.queue.InsertOne(ctx, item)
}

// MoveToDeadLetter chuyển item hết retry budget sang dead-letter queue và
// xóa khỏi source queue. Dead-lettered items không bao giờ tự động retry.
func (s *QueueStore) MoveToDeadLetter(ctx context.Context, item queuemodels.QueueItem, lastError string) error {
	now := time.Now().Unix()
	dead := queuemodels.DeadLetterItem{
		SourceQueue: item.Queue,
		Category:    item.Type,
		Item:        item,
		LastError:   lastError,
		FailedAt:    now,
	}
	if _, err := s.deadLetters.InsertOne(ctx, dead); err != nil {
		return fmt.Errorf("failed to insert dead letter: %w", err)
	}
	return s.queue.DeleteOne(ctx, bson.M{"_id": item.ID})
}

// ListDeadLetters trả về các dead-lettered items mới nhất (cho admin inspect)
func (s *QueueStore) ListDeadLetters(ctx context.Context, limit int) ([]queuemodels.DeadLetterItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "failedAt", Value: -1}}).
		SetLimit(int64(limit))
	return s.deadLetters.Find(ctx, nil, opts)
}

// CountQueue đếm items đang chờ trong một queue
func (s *QueueStore) CountQueue(ctx context.Context, queueName string) (int64, error) {
	return s.queue.CountDocuments(ctx, bson.M{"queue": queueName})
}

// ====================================
// PENDING BATCHES
// ====================================

// AppendToBatch append một message vào pending batch của conversation.
// Upsert atomic: nếu batch chưa tồn tại thì tạo mới với message là entry duy nhất,
// nếu đã tồn tại thì push message và bump lastUpdated. An toàn trước các
// orchestrator run chạy song song (read-modify-write trong một lệnh Mongo).
func (s *QueueStore) AppendToBatch(ctx context.Context, batch queuemodels.PendingBatch, msg queuemodels.BatchMessage) (queuemodels.PendingBatch, error) {
	filter := bson.M{"conversationId": batch.ConversationID}
	update := buildBatchUpsert(batch, msg, time.Now().Unix())
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	return s.batches.FindOneAndUpdate(ctx, filter, update, opts)
}

// buildBatchUpsert dựng update document cho upsert batch: $push message vào cuối
// (giữ thứ tự đến), $set bump lastUpdated, $setOnInsert ghi identity chỉ khi tạo mới
func buildBatchUpsert(batch queuemodels.PendingBatch, msg queuemodels.BatchMessage, now int64) bson.M {
	return bson.M{
		"$push": bson.M{"messages": msg},
		"$set": bson.M{
			"lastUpdated": now,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"conversationId": batch.ConversationID,
			"connectionId":   batch.ConnectionID,
			"companyId":      batch.CompanyID,
			"contactName":    batch.ContactName,
			"contactPhone":   batch.ContactPhone,
			"instanceToken":  batch.InstanceToken,
			"createdAt":      now,
		},
	}
}

// ScanBatches liệt kê tất cả pending batches hiện có
func (s *QueueStore) ScanBatches(ctx context.Context) ([]queuemodels.PendingBatch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastUpdated", Value: 1}})
	return s.batches.Find(ctx, nil, opts)
}

// GetBatch lấy pending batch theo conversation
func (s *QueueStore) GetBatch(ctx context.Context, conversationID primitive.ObjectID) (queuemodels.PendingBatch, error) {
	return s.batches.FindOne(ctx, bson.M{"conversationId": conversationID}, nil)
}

// DeleteBatch xóa batch của conversation. Gọi vô điều kiện sau một lần xử lý
// (thành công hay thất bại) — batch hỏng không bao giờ bị reprocess vô hạn.
func (s *QueueStore) DeleteBatch(ctx context.Context, conversationID primitive.ObjectID) error {
	return s.batches.DeleteOne(ctx, bson.M{"conversationId": conversationID})
}

// ====================================
// STATS COUNTERS
// ====================================

// IncrCounters tăng các counter của pipeline và ghi lastRun trong một lệnh atomic
func (s *QueueStore) IncrCounters(ctx context.Context, deltas map[string]int64) error {
	inc := bson.M{}
	for name, by := range deltas {
		if by != 0 {
			inc[name] = by
		}
	}

	update := bson.M{
		"$set": bson.M{"lastRun": time.Now().Unix()},
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.stats.Collection().UpdateOne(ctx, bson.M{"_id": queuemodels.StatsID}, update, opts)
	return err
}

// GetStats đọc document counters hiện tại. Trả về zero-value stats nếu
// pipeline chưa chạy lần nào.
func (s *QueueStore) GetStats(ctx context.Context) (queuemodels.PipelineStats, error) {
	stats, err := s.stats.FindOne(ctx, bson.M{"_id": queuemodels.StatsID}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return queuemodels.PipelineStats{ID: queuemodels.StatsID}, nil
		}
		return queuemodels.PipelineStats{}, err
	}
	return stats, nil
}
