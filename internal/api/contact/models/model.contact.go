// Package models - Contact thuộc domain Contact.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact đại diện cho một liên hệ trong danh bạ của tenant
type Contact struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CompanyID primitive.ObjectID `json:"companyId" bson:"companyId" index:"single:1"`
	Name      string             `json:"name" bson:"name"`
	Phone     string             `json:"phone" bson:"phone" index:"single:1"` // Chỉ chữ số, có mã quốc gia

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
