// Package models - QueueItem, PendingBatch, DeadLetterItem, PipelineStats thuộc domain Queue.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tên các queue của pipeline
const (
	QueueMediaProcessing = "media_processing" // Media jobs (tải media về và publish)
	QueueAIAgentLegacy   = "ai_agent_legacy"  // AI jobs kiểu cũ (một message, không qua batch)
)

// Các loại job trong queue (tagged payload)
const (
	JobTypeMedia         = "media"
	JobTypeAIAgentLegacy = "ai-agent-legacy"
)

// MediaJob là payload của một media job: tải một media artifact từ gateway,
// upload lên object storage và cập nhật message record gốc.
type MediaJob struct {
	MessageRecordID   primitive.ObjectID `json:"messageRecordId" bson:"messageRecordId"`
	ExternalMessageID string             `json:"externalMessageId" bson:"externalMessageId"` // ID phía gateway để download
	MediaKind         string             `json:"mediaKind" bson:"mediaKind"`                 // image | video | audio | document | sticker
	CompanyID         primitive.ObjectID `json:"companyId" bson:"companyId"`
	ConnectionID      primitive.ObjectID `json:"connectionId" bson:"connectionId"`
	InstanceToken     string             `json:"instanceToken" bson:"instanceToken"`
	DeclaredFileName  string             `json:"declaredFileName,omitempty" bson:"declaredFileName,omitempty"` // Tên file gateway khai báo (documents)
	DeclaredMimeType  string             `json:"declaredMimeType,omitempty" bson:"declaredMimeType,omitempty"`
}

// AIAgentLegacyJob là payload của một AI job kiểu cũ: một message đơn lẻ
// đi thẳng vào generator mà không qua batch accumulator.
type AIAgentLegacyJob struct {
	ConversationID primitive.ObjectID `json:"conversationId" bson:"conversationId"`
	ConnectionID   primitive.ObjectID `json:"connectionId" bson:"connectionId"`
	CompanyID      primitive.ObjectID `json:"companyId" bson:"companyId"`
	Content        string             `json:"content" bson:"content"`
	ContactName    string             `json:"contactName" bson:"contactName"`
	ContactPhone   string             `json:"contactPhone" bson:"contactPhone"`
	InstanceToken  string             `json:"instanceToken" bson:"instanceToken"`
}

// QueueItem là một job trong FIFO queue. Payload là tagged union:
// đúng một trong Media / AIAgent khác nil tùy theo Type.
// Invariant: item luôn nằm ở đúng một trong {source queue, requeue với
// attempts+1, dead-letter queue} — không bao giờ mất im lặng.
type QueueItem struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Queue         string             `json:"queue" bson:"queue" index:"single:1"` // Tên queue chứa item
	Type          string             `json:"type" bson:"type"`                    // media | ai-agent-legacy
	Media         *MediaJob          `json:"media,omitempty" bson:"media,omitempty"`
	AIAgent       *AIAgentLegacyJob  `json:"aiAgent,omitempty" bson:"aiAgent,omitempty"`
	Attempts      int                `json:"attempts" bson:"attempts"`                               // Số lần xử lý thất bại trước đó
	LastAttemptAt int64              `json:"lastAttemptAt,omitempty" bson:"lastAttemptAt,omitempty"` // Unix seconds — chẩn đoán item bị kẹt

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Cũng là thứ tự FIFO trong queue
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// DeadLetterItem là một job đã hết retry budget, chờ thao tác thủ công.
// Không bao giờ được tự động retry.
type DeadLetterItem struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SourceQueue string             `json:"sourceQueue" bson:"sourceQueue"`
	Category    string             `json:"category" bson:"category"` // media | ai-agent-legacy
	Item        QueueItem          `json:"item" bson:"item"`         // Job gốc với attempts cuối cùng
	LastError   string             `json:"lastError,omitempty" bson:"lastError,omitempty"`
	FailedAt    int64              `json:"failedAt" bson:"failedAt"` // Unix seconds

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// BatchMessage là một message inbound nằm trong pending batch, giữ nguyên thứ tự đến
type BatchMessage struct {
	Content    string `json:"content" bson:"content"`
	MediaType  string `json:"mediaType,omitempty" bson:"mediaType,omitempty"` // Rỗng với text
	ReceivedAt int64  `json:"receivedAt" bson:"receivedAt"`                   // Unix seconds
}

// PendingBatch gom các message inbound của một conversation trong debounce window.
// Invariant: tối đa một batch sống cho mỗi conversation (unique index conversationId).
// Batch bị xóa vô điều kiện sau một lần xử lý, kể cả khi generator lỗi.
type PendingBatch struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversationId" bson:"conversationId" index:"unique"`
	ConnectionID   primitive.ObjectID `json:"connectionId" bson:"connectionId"`
	CompanyID      primitive.ObjectID `json:"companyId" bson:"companyId"`
	Messages       []BatchMessage     `json:"messages" bson:"messages"`
	ContactName    string             `json:"contactName" bson:"contactName"`
	ContactPhone   string             `json:"contactPhone" bson:"contactPhone"`
	InstanceToken  string             `json:"instanceToken" bson:"instanceToken"`
	LastUpdated    int64              `json:"lastUpdated" bson:"lastUpdated"` // Unix seconds — debounce tính từ đây

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// PipelineStats là document counters duy nhất của pipeline.
// Chỉ tăng ở cuối mỗi orchestrator run, không bao giờ reset tự động.
type PipelineStats struct {
	ID               string `json:"id" bson:"_id"` // Luôn là "pipeline_stats"
	MediaProcessed   int64  `json:"mediaProcessed" bson:"mediaProcessed"`
	MediaFailed      int64  `json:"mediaFailed" bson:"mediaFailed"`
	AIProcessed      int64  `json:"aiProcessed" bson:"aiProcessed"`
	AIFailed         int64  `json:"aiFailed" bson:"aiFailed"`
	BatchesProcessed int64  `json:"batchesProcessed" bson:"batchesProcessed"`
	LastRun          int64  `json:"lastRun" bson:"lastRun"` // Unix seconds của run gần nhất
}

// StatsID là _id cố định của document PipelineStats
const StatsID = "pipeline_stats"
