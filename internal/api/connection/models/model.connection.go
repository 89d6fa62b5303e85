// Package models - Connection thuộc domain Connection.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Connection đại diện cho một WhatsApp instance của tenant trên UAZAPI gateway
type Connection struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CompanyID     primitive.ObjectID `json:"companyId" bson:"companyId" index:"single:1"`
	Name          string             `json:"name" bson:"name"`
	InstanceToken string             `json:"instanceToken" bson:"instanceToken" index:"single:1"` // Token xác thực với UAZAPI
	Status        string             `json:"status" bson:"status"`                                // connected | disconnected

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
