package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/database"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/pipeline"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// startPipelineWorker khởi tạo và chạy pipeline worker trong goroutine riêng
func startPipelineWorker(ctx context.Context) {
	log := logger.GetAppLogger()

	orchestrator, err := pipeline.BuildOrchestrator(global.ServerConfig)
	if err != nil {
		log.WithError(err).Fatal("⚙️ [PIPELINE] Failed to build orchestrator")
	}

	interval := time.Duration(global.ServerConfig.PipelineRunIntervalSeconds) * time.Second
	pipelineWorker := worker.NewPipelineWorker(orchestrator, interval)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Error("⚙️ [PIPELINE] Worker goroutine panic")
			}
		}()
		if err := pipelineWorker.Start(ctx); err != nil {
			log.WithError(err).Error("⚙️ [PIPELINE] Worker stopped with error")
		}
	}()

	log.Info("⚙️ [PIPELINE] Pipeline Worker started successfully")
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	log := logger.GetAppLogger()

	// Context dừng worker khi nhận shutdown signal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Khởi động pipeline worker (background scheduler)
	startPipelineWorker(ctx)

	// Khởi tạo Fiber app
	app := InitFiberApp()

	// Graceful shutdown: dừng HTTP server rồi mới tắt worker và database
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdownCh
		log.Infof("Nhận signal %v, bắt đầu graceful shutdown...", sig)

		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.WithError(err).Error("Lỗi khi shutdown Fiber app")
		}
		cancel()

		if err := database.CloseInstance(global.MongoDB_Session); err != nil {
			log.WithError(err).Error("Lỗi khi đóng kết nối MongoDB")
		}
	}()

	address := global.ServerConfig.Address
	log.WithFields(map[string]interface{}{
		"address": address,
	}).Info("Starting Fiber server...")

	if err := app.Listen(address, fiber.ListenConfig{}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}

	log.Info("Server stopped")
}
