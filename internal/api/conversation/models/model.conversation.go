// Package models - Conversation thuộc domain Conversation.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation đại diện cho một cuộc hội thoại với một contact qua một connection.
// Pipeline chỉ đọc phone/contact và bump lastMessageAt sau khi gửi AI reply.
type Conversation struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CompanyID     primitive.ObjectID `json:"companyId" bson:"companyId" index:"single:1"`
	ConnectionID  primitive.ObjectID `json:"connectionId" bson:"connectionId" index:"single:1"`
	ContactID     primitive.ObjectID `json:"contactId" bson:"contactId" index:"single:1"`
	LastMessageAt int64              `json:"lastMessageAt" bson:"lastMessageAt"` // Unix seconds, dùng để sort inbox
	UnreadCount   int                `json:"unreadCount" bson:"unreadCount"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
