// Package agentsvc chứa service data access cho domain Agent (AI agent configs).
package agentsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	agentmodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/agent/models"
	basesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/base/service"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
)

// AgentConfigService là service quản lý AI agent configs
type AgentConfigService struct {
	*basesvc.BaseServiceMongoImpl[agentmodels.AIAgentConfig]
}

// NewAgentConfigService tạo mới AgentConfigService
func NewAgentConfigService() (*AgentConfigService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.AIAgentConfigs)
	if !exist {
		return nil, fmt.Errorf("failed to get ai_agent_configs collection: %w", common.ErrNotFound)
	}

	return &AgentConfigService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[agentmodels.AIAgentConfig](collection),
	}, nil
}

// FindByConnectionId tìm config theo connection. Trả về common.ErrNotFound nếu
// connection chưa cấu hình agent — caller tự quyết định dùng default hay skip.
func (s *AgentConfigService) FindByConnectionId(ctx context.Context, connectionID primitive.ObjectID) (agentmodels.AIAgentConfig, error) {
	return s.FindOne(ctx, bson.M{"connectionId": connectionID}, nil)
}
