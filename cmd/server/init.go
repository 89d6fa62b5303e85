package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oFelixJpedro/connectflow-pro-sub003/config"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/database"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()  // Khởi tạo tên các collection trong database
	initValidator() // Khởi tạo validator
	initConfig()    // Khởi tạo cấu hình server
	initDatabase()  // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.ColNames.Messages = "messages"
	global.ColNames.Conversations = "conversations"
	global.ColNames.Contacts = "contacts"
	global.ColNames.Connections = "connections"
	global.ColNames.AIAgentConfigs = "ai_agent_configs"

	// Pipeline Collections (delivery pipeline)
	global.ColNames.PipelineQueue = "pipeline_queue"
	global.ColNames.PipelineDeadLetters = "pipeline_dead_letters"
	global.ColNames.PipelineBatches = "pipeline_batches"
	global.ColNames.PipelineStats = "pipeline_stats"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (đăng ký custom validators: phone_digits, message_type)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server từ file env
func initConfig() {
	global.ServerConfig = config.NewConfig()
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối MongoDB và tạo index cho pipeline
func initDatabase() {
	client, err := database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	global.MongoDB_Session = client
	logrus.Info("Connected to MongoDB")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db := client.Database(global.ServerConfig.MongoDB_DBName)
	if err := database.CreatePipelineIndexes(ctx, db); err != nil {
		logrus.Fatalf("Failed to create pipeline indexes: %v", err)
	}
	logrus.Info("Created pipeline indexes")
}
