// Package contactsvc chứa service data access cho domain Contact.
package contactsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/base/service"
	contactmodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/contact/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
)

// ContactService là service quản lý contacts
type ContactService struct {
	*basesvc.BaseServiceMongoImpl[contactmodels.Contact]
}

// NewContactService tạo mới ContactService
func NewContactService() (*ContactService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.Contacts)
	if !exist {
		return nil, fmt.Errorf("failed to get contacts collection: %w", common.ErrNotFound)
	}

	return &ContactService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[contactmodels.Contact](collection),
	}, nil
}

// FindOrCreateByPhone tìm contact theo (companyId, phone), tạo mới nếu chưa có.
// Lỗi truy vấn khác NotFound được propagate, không tạo contact trùng.
func (s *ContactService) FindOrCreateByPhone(ctx context.Context, companyID primitive.ObjectID, phone, name string) (contactmodels.Contact, error) {
	filter := bson.M{
		"companyId": companyID,
		"phone":     phone,
	}
	return basesvc.FindOrCreate(
		func() (contactmodels.Contact, error) {
			return s.FindOne(ctx, filter, nil)
		},
		func() (contactmodels.Contact, error) {
			return s.InsertOne(ctx, contactmodels.Contact{
				CompanyID: companyID,
				Name:      name,
				Phone:     phone,
			})
		},
	)
}
