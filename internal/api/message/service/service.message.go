// Package messagesvc chứa service data access cho domain Message.
package messagesvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/base/service"
	messagemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/message/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
)

// MessageService là service quản lý message records
type MessageService struct {
	*basesvc.BaseServiceMongoImpl[messagemodels.MessageRecord]
}

// NewMessageService tạo mới MessageService
func NewMessageService() (*MessageService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.Messages)
	if !exist {
		return nil, fmt.Errorf("failed to get messages collection: %w", common.ErrNotFound)
	}

	return &MessageService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[messagemodels.MessageRecord](collection),
	}, nil
}

// MarkMediaDelivered chuyển message pending → delivered sau khi media đã upload xong.
// Cập nhật mediaUrl, mediaMimeType, xóa errorMessage và merge metadata provenance.
// Record đã terminal (job chạy lại) được ghi đè thay vì báo lỗi.
func (s *MessageService) MarkMediaDelivered(ctx context.Context, id primitive.ObjectID, mediaURL, mimeType string, metadata map[string]interface{}) error {
	record, err := s.FindOneById(ctx, id)
	if err != nil {
		return fmt.Errorf("message record not found: %w", err)
	}
	if _, err := messagemodels.PlanMediaWrite(record.Status, messagemodels.MessageStatusDelivered); err != nil {
		return err
	}

	set := map[string]interface{}{
		"status":        messagemodels.MessageStatusDelivered,
		"mediaUrl":      mediaURL,
		"mediaMimeType": mimeType,
	}
	// Merge metadata: giữ các key cũ, ghi đè key mới
	for key, value := range metadata {
		set["metadata."+key] = value
	}

	update := &basesvc.UpdateData{
		Set:   set,
		Unset: map[string]interface{}{"errorMessage": ""},
	}
	_, err = s.UpdateOne(ctx, bson.M{"_id": id}, update, nil)
	return err
}

// MarkMediaFailed chuyển message pending → failed với error message.
// Record đã delivered được giữ nguyên (không downgrade khi job chạy lại).
func (s *MessageService) MarkMediaFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	record, err := s.FindOneById(ctx, id)
	if err != nil {
		return fmt.Errorf("message record not found: %w", err)
	}
	action, err := messagemodels.PlanMediaWrite(record.Status, messagemodels.MessageStatusFailed)
	if err != nil {
		return err
	}
	if action == messagemodels.MediaWriteSkip {
		return nil
	}

	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":       messagemodels.MessageStatusFailed,
			"errorMessage": reason,
		},
	}
	_, err = s.UpdateOne(ctx, bson.M{"_id": id}, update, nil)
	return err
}

// InsertInbound tạo bản ghi inbound mới từ webhook.
// Media bắt đầu ở pending (chờ pipeline tải về), text vào thẳng delivered.
func (s *MessageService) InsertInbound(ctx context.Context, record messagemodels.MessageRecord) (messagemodels.MessageRecord, error) {
	record.Direction = "inbound"
	if record.Status == "" {
		record.Status = messagemodels.MessageStatusDelivered
	}
	return s.InsertOne(ctx, record)
}

// InsertOutbound tạo bản ghi outbound mới cho một chunk AI reply đã gửi thành công
func (s *MessageService) InsertOutbound(ctx context.Context, record messagemodels.MessageRecord) (messagemodels.MessageRecord, error) {
	record.Direction = "outbound"
	if record.Status == "" {
		record.Status = messagemodels.MessageStatusSent
	}
	if record.Metadata == nil {
		record.Metadata = map[string]interface{}{}
	}
	record.Metadata["sentAt"] = time.Now().Unix()
	return s.InsertOne(ctx, record)
}
