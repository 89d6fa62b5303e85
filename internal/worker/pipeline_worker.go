package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/pipeline"
)

// PipelineWorker chạy orchestrator định kỳ qua cron scheduler.
// SkipIfStillRunning đảm bảo single-flight: run đang chạy thì tick kế bị bỏ qua,
// không bao giờ có hai run chồng nhau trên queue store.
type PipelineWorker struct {
	orchestrator *pipeline.Orchestrator
	interval     time.Duration // Khoảng thời gian giữa các lần chạy
	cron         *cron.Cron
}

// NewPipelineWorker tạo worker với interval cho trước (tối thiểu 10 giây)
func NewPipelineWorker(orchestrator *pipeline.Orchestrator, interval time.Duration) *PipelineWorker {
	if interval < 10*time.Second {
		interval = time.Minute
	}
	return &PipelineWorker{
		orchestrator: orchestrator,
		interval:     interval,
	}
}

// Start đăng ký job với cron và chạy scheduler cho tới khi ctx bị cancel
func (w *PipelineWorker) Start(ctx context.Context) error {
	log := logger.GetAppLogger()

	w.cron = cron.New(cron.WithChain(
		cron.Recover(cron.DiscardLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	schedule := fmt.Sprintf("@every %s", w.interval.String())
	_, err := w.cron.AddFunc(schedule, func() {
		if _, err := w.orchestrator.Run(ctx); err != nil {
			log.WithError(err).Error("⚙️ [PIPELINE] Run thất bại, sẽ thử lại ở tick tiếp theo")
		}
	})
	if err != nil {
		return fmt.Errorf("không đăng ký được pipeline job: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("⚙️ [PIPELINE] Starting Pipeline Worker...")

	w.cron.Start()

	<-ctx.Done()
	stopCtx := w.cron.Stop()
	// Chờ run đang dở chạy xong rồi mới trả về
	<-stopCtx.Done()
	log.Info("⚙️ [PIPELINE] Pipeline Worker stopped")
	return nil
}
