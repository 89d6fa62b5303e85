// Package conversationsvc chứa service data access cho domain Conversation.
package conversationsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/base/service"
	conversationmodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/conversation/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
)

// ConversationService là service quản lý conversations
type ConversationService struct {
	*basesvc.BaseServiceMongoImpl[conversationmodels.Conversation]
}

// NewConversationService tạo mới ConversationService
func NewConversationService() (*ConversationService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.Conversations)
	if !exist {
		return nil, fmt.Errorf("failed to get conversations collection: %w", common.ErrNotFound)
	}

	return &ConversationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[conversationmodels.Conversation](collection),
	}, nil
}

// BumpLastMessageAt cập nhật lastMessageAt của conversation sau khi gửi reply
func (s *ConversationService) BumpLastMessageAt(ctx context.Context, id primitive.ObjectID) error {
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"lastMessageAt": time.Now().Unix(),
		},
	}
	_, err := s.UpdateOne(ctx, bson.M{"_id": id}, update, nil)
	return err
}

// FindOrCreate tìm conversation theo (connectionId, contactId), tạo mới nếu chưa có.
// Lỗi truy vấn khác NotFound được propagate, không tạo conversation trùng.
func (s *ConversationService) FindOrCreate(ctx context.Context, companyID, connectionID, contactID primitive.ObjectID) (conversationmodels.Conversation, error) {
	filter := bson.M{
		"connectionId": connectionID,
		"contactId":    contactID,
	}
	return basesvc.FindOrCreate(
		func() (conversationmodels.Conversation, error) {
			return s.FindOne(ctx, filter, nil)
		},
		func() (conversationmodels.Conversation, error) {
			return s.InsertOne(ctx, conversationmodels.Conversation{
				CompanyID:     companyID,
				ConnectionID:  connectionID,
				ContactID:     contactID,
				LastMessageAt: time.Now().Unix(),
			})
		},
	)
}
