// Package global chứa các biến toàn cục của ứng dụng: cấu hình server,
// phiên kết nối MongoDB, tên các collection và các registry dùng chung.
package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oFelixJpedro/connectflow-pro-sub003/config"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/registry"
)

// CollectionName chứa tên các collection trong MongoDB
type CollectionName struct {
	Messages       string // Tên collection cho message records
	Conversations  string // Tên collection cho cuộc hội thoại
	Contacts       string // Tên collection cho danh bạ
	Connections    string // Tên collection cho kết nối WhatsApp (instance)
	AIAgentConfigs string // Tên collection cho cấu hình AI agent theo connection

	// Pipeline Collections (delivery pipeline)
	PipelineQueue       string // Tên collection cho job queue (media + ai legacy)
	PipelineDeadLetters string // Tên collection cho dead-letter queue
	PipelineBatches     string // Tên collection cho pending batches theo conversation
	PipelineStats       string // Tên collection cho counters của pipeline
}

// Các biến toàn cục
var Validate *validator.Validate                   // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                  // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration             // Cấu hình của server
var ColNames CollectionName = *new(CollectionName) // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
