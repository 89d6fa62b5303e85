package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Bao gồm kết nối cơ sở dữ liệu, các service ngoài (gateway, AI, TTS, storage)
// và các tham số điều chỉnh của delivery pipeline.
type Configuration struct {
	Address string `env:"ADDRESS" envDefault:":8080"` // Địa chỉ server

	// MongoDB
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"` // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`         // Tên cơ sở dữ liệu

	// UAZAPI Messaging Gateway
	UazapiBaseURL string `env:"UAZAPI_BASE_URL,required"` // Base URL của UAZAPI gateway

	// AI Agent (generation service - black-box RPC)
	AIAgentServiceURL string `env:"AI_AGENT_SERVICE_URL,required"` // URL của generation service
	AIAgentServiceKey string `env:"AI_AGENT_SERVICE_KEY"`          // API key của generation service

	// Speech Synthesis (voice service - black-box RPC)
	SpeechServiceURL string `env:"SPEECH_SERVICE_URL"` // URL của speech synthesis service
	SpeechServiceKey string `env:"SPEECH_SERVICE_KEY"` // API key của speech service

	// Object Storage
	StorageBaseURL string `env:"STORAGE_BASE_URL,required"`              // Base URL của object storage
	StorageBucket  string `env:"STORAGE_BUCKET" envDefault:"chat-media"` // Bucket chứa media
	StorageAPIKey  string `env:"STORAGE_API_KEY,required"`               // API key của object storage

	// Pipeline tuning
	PipelineRunIntervalSeconds int     `env:"PIPELINE_RUN_INTERVAL" envDefault:"60"`        // Khoảng cách giữa các lần chạy orchestrator (giây)
	PipelineMediaDrainLimit    int     `env:"PIPELINE_MEDIA_DRAIN_LIMIT" envDefault:"10"`   // Số media jobs tối đa mỗi run
	PipelineAIDrainLimit       int     `env:"PIPELINE_AI_DRAIN_LIMIT" envDefault:"5"`       // Số AI jobs tối đa mỗi run
	PipelineMaxAttempts        int     `env:"PIPELINE_MAX_ATTEMPTS" envDefault:"3"`         // Số lần thử tối đa trước khi vào dead-letter queue
	DefaultBatchWindowSeconds  int     `env:"DEFAULT_BATCH_WINDOW_SECONDS" envDefault:"75"` // Debounce window mặc định cho batch
	DefaultSplitDelaySeconds   float64 `env:"DEFAULT_SPLIT_DELAY_SECONDS" envDefault:"2"`   // Delay mặc định giữa các chunk

	// CORS
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config/env bằng cách đi lên từ working directory
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env (nếu có) và environment variables
func NewConfig() *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// File env không bắt buộc — có thể chạy thuần environment variables
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
