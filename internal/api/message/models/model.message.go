// Package models - MessageRecord thuộc domain Message.
package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
)

// MessageStatus là trạng thái delivery của một message record
type MessageStatus string

// Các trạng thái hợp lệ của message
const (
	MessageStatusPending   MessageStatus = "pending"   // Chờ pipeline xử lý (media chưa tải về)
	MessageStatusSent      MessageStatus = "sent"      // Đã gửi đi qua gateway (outbound)
	MessageStatusDelivered MessageStatus = "delivered" // Media đã xử lý xong / gateway xác nhận
	MessageStatusFailed    MessageStatus = "failed"    // Xử lý thất bại, errorMessage có chi tiết
)

// allowedTransitions khai báo tường minh các chuyển trạng thái được phép.
// Pipeline chỉ được chuyển pending → delivered hoặc pending → failed.
var allowedTransitions = map[MessageStatus][]MessageStatus{
	MessageStatusPending: {MessageStatusDelivered, MessageStatusFailed},
}

// CanTransition kiểm tra chuyển trạng thái from → to có được phép không
func CanTransition(from, to MessageStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition chuyển trạng thái của message, trả lỗi nếu chuyển không hợp lệ
func (m *MessageRecord) Transition(to MessageStatus) error {
	if !CanTransition(m.Status, to) {
		return fmt.Errorf("%w: không được phép chuyển trạng thái message từ %q sang %q", common.ErrInvalidState, m.Status, to)
	}
	m.Status = to
	return nil
}

// MediaWriteAction cho biết cách ghi kết quả xử lý media vào record hiện tại
type MediaWriteAction int

// Các action ghi kết quả media
const (
	MediaWriteApply MediaWriteAction = iota // Ghi trạng thái và các field kèm theo
	MediaWriteSkip                          // Bỏ qua, record đã delivered rồi
)

// PlanMediaWrite quyết định cách ghi trạng thái media mới lên record.
// Job media có thể bị xử lý lại (requeue, trùng lặp trong queue), nên record
// đã terminal không được coi là lỗi: delivered ghi đè delivered/failed với
// kết quả tương đương, còn failed không bao giờ downgrade một record đã
// delivered. Chỉ sent (outbound) mới là trạng thái thật sự không hợp lệ.
func PlanMediaWrite(current, target MessageStatus) (MediaWriteAction, error) {
	if CanTransition(current, target) {
		return MediaWriteApply, nil
	}
	switch {
	case current == target && (target == MessageStatusDelivered || target == MessageStatusFailed):
		return MediaWriteApply, nil // job chạy lại, ghi đè kết quả tương đương
	case current == MessageStatusFailed && target == MessageStatusDelivered:
		return MediaWriteApply, nil // recovery: lần requeue sau thành công
	case current == MessageStatusDelivered && target == MessageStatusFailed:
		return MediaWriteSkip, nil // không downgrade record đã delivered
	}
	return MediaWriteSkip, fmt.Errorf("%w: không ghi được kết quả media %q lên record đang ở trạng thái %q", common.ErrInvalidState, target, current)
}

// MessageRecord đại diện cho một tin nhắn (inbound hoặc outbound) trong hội thoại.
// Pipeline chỉ mutate các bản ghi inbound media (pending → delivered/failed)
// và insert bản ghi outbound mới cho AI reply — không bao giờ sửa outbound đã có.
type MessageRecord struct {
	ID                primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID    primitive.ObjectID     `json:"conversationId" bson:"conversationId" index:"single:1"`
	ConnectionID      primitive.ObjectID     `json:"connectionId" bson:"connectionId" index:"single:1"`
	CompanyID         primitive.ObjectID     `json:"companyId" bson:"companyId" index:"single:1"`                    // Tenant sở hữu dữ liệu
	ExternalMessageID string                 `json:"externalMessageId,omitempty" bson:"externalMessageId,omitempty"` // ID của message phía gateway
	Direction         string                 `json:"direction" bson:"direction"`                                     // inbound | outbound
	Content           string                 `json:"content,omitempty" bson:"content,omitempty"`
	MessageType       string                 `json:"messageType" bson:"messageType"` // text, image, video, audio, document, sticker
	Status            MessageStatus          `json:"status" bson:"status" index:"single:1"`
	MediaURL          string                 `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`
	MediaMimeType     string                 `json:"mediaMimeType,omitempty" bson:"mediaMimeType,omitempty"`
	ErrorMessage      string                 `json:"errorMessage,omitempty" bson:"errorMessage,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"` // Provenance: processedAt, processedByQueue, fileName, storagePath, partIndex...

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Unix seconds
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
