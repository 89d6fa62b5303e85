// Package models - AIAgentConfig thuộc domain Agent.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AIAgentConfig lưu cấu hình AI agent cho một connection.
// Pipeline đọc: Enabled, MessageBatchSeconds (debounce window),
// SplitResponseEnabled và SplitDelaySeconds (pacing khi gửi reply).
type AIAgentConfig struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CompanyID    primitive.ObjectID `json:"companyId" bson:"companyId" index:"single:1"`
	ConnectionID primitive.ObjectID `json:"connectionId" bson:"connectionId" index:"single:1"`
	AgentName    string             `json:"agentName" bson:"agentName"`
	Enabled      bool               `json:"enabled" bson:"enabled"`

	// Debounce: batch chỉ chín sau khi im lặng đủ lâu
	MessageBatchSeconds int `json:"messageBatchSeconds" bson:"messageBatchSeconds"` // Mặc định 75 giây nếu = 0

	// Pacing khi gửi reply
	SplitResponseEnabled bool    `json:"splitResponseEnabled" bson:"splitResponseEnabled"`
	SplitDelaySeconds    float64 `json:"splitDelaySeconds" bson:"splitDelaySeconds"` // Mặc định 2.0 giây nếu = 0

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// BatchWindowSeconds trả về debounce window hiệu lực: giá trị của connection,
// rồi tới default của deployment (DEFAULT_BATCH_WINDOW_SECONDS), cuối cùng 75s
func (c *AIAgentConfig) BatchWindowSeconds(deploymentDefault int) int {
	if c.MessageBatchSeconds > 0 {
		return c.MessageBatchSeconds
	}
	if deploymentDefault > 0 {
		return deploymentDefault
	}
	return 75
}

// SplitDelay trả về delay giữa các chunk hiệu lực: giá trị của connection,
// rồi tới default của deployment (DEFAULT_SPLIT_DELAY_SECONDS), cuối cùng 2.0s
func (c *AIAgentConfig) SplitDelay(deploymentDefault float64) float64 {
	if c.SplitDelaySeconds > 0 {
		return c.SplitDelaySeconds
	}
	if deploymentDefault > 0 {
		return deploymentDefault
	}
	return 2.0
}
