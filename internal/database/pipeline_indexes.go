// Package database - Index cho các collection của delivery pipeline.
package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
)

// CreatePipelineIndexes tạo các index cần thiết cho queue/batch/message collections.
// Gọi một lần khi khởi động server, idempotent (bỏ qua lỗi index đã tồn tại).
func CreatePipelineIndexes(ctx context.Context, db *mongo.Database) error {
	// pipeline_queue: (queue, createdAt) — peek FIFO theo queue name
	queue := db.Collection(global.ColNames.PipelineQueue)
	if _, err := queue.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "queue", Value: 1},
			{Key: "createdAt", Value: 1},
		},
		Options: options.Index().SetName("pipeline_queue_fifo"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// pipeline_batches: conversationId unique — tối đa 1 batch sống mỗi conversation
	batches := db.Collection(global.ColNames.PipelineBatches)
	if _, err := batches.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "conversationId", Value: 1}},
		Options: options.Index().SetName("pipeline_batch_conversation").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// messages: (conversationId, createdAt) — đọc lịch sử hội thoại theo thứ tự
	messages := db.Collection(global.ColNames.Messages)
	if _, err := messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "conversationId", Value: 1},
			{Key: "createdAt", Value: 1},
		},
		Options: options.Index().SetName("message_conversation_time"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// messages: externalMessageId sparse — webhook lookup theo id của gateway
	if _, err := messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "externalMessageId", Value: 1}},
		Options: options.Index().SetName("message_external_id").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// ai_agent_configs: connectionId — lookup config theo connection
	agentConfigs := db.Collection(global.ColNames.AIAgentConfigs)
	if _, err := agentConfigs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "connectionId", Value: 1}},
		Options: options.Index().SetName("agent_config_connection"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

// isIndexExistsError kiểm tra lỗi index đã tồn tại (IndexKeySpecsConflict / IndexOptionsConflict)
func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "IndexKeySpecsConflict") ||
		strings.Contains(msg, "IndexOptionsConflict") ||
		strings.Contains(msg, "already exists")
}
