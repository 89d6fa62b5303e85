// Package connectionsvc chứa service data access cho domain Connection.
package connectionsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	basesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/base/service"
	connectionmodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/connection/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
)

// ConnectionService là service quản lý connections (WhatsApp instances)
type ConnectionService struct {
	*basesvc.BaseServiceMongoImpl[connectionmodels.Connection]
}

// NewConnectionService tạo mới ConnectionService
func NewConnectionService() (*ConnectionService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.Connections)
	if !exist {
		return nil, fmt.Errorf("failed to get connections collection: %w", common.ErrNotFound)
	}

	return &ConnectionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[connectionmodels.Connection](collection),
	}, nil
}

// FindByInstanceToken tìm connection theo instance token từ webhook của UAZAPI
func (s *ConnectionService) FindByInstanceToken(ctx context.Context, token string) (connectionmodels.Connection, error) {
	return s.FindOne(ctx, bson.M{"instanceToken": token}, nil)
}
