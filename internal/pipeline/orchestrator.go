package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	agentmodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/agent/models"
	queuemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/batch"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
)

// QueueSource là phần của queue store mà orchestrator đọc/ghi trực tiếp
type QueueSource interface {
	RetryStore
	ScanBatches(ctx context.Context) ([]queuemodels.PendingBatch, error)
	DeleteBatch(ctx context.Context, conversationID primitive.ObjectID) error
	PeekBatch(ctx context.Context, queueName string, n int) ([]queuemodels.QueueItem, error)
}

// ConfigSource tra cứu agent config theo connection
type ConfigSource interface {
	FindByConnectionId(ctx context.Context, connectionID primitive.ObjectID) (agentmodels.AIAgentConfig, error)
}

// BatchResponder generate và gửi reply cho batch hoặc legacy job
type BatchResponder interface {
	RespondToBatch(ctx context.Context, b queuemodels.PendingBatch, cfg *agentmodels.AIAgentConfig) error
	RespondToLegacyJob(ctx context.Context, job queuemodels.AIAgentLegacyJob, cfg *agentmodels.AIAgentConfig) error
}

// MediaJobProcessor xử lý một media job trọn vẹn (download, upload, publish)
type MediaJobProcessor interface {
	Process(ctx context.Context, job queuemodels.MediaJob) error
}

// RunSummary là kết quả của một lần orchestrator run
type RunSummary struct {
	MediaProcessed   int64 `json:"mediaProcessed"`
	MediaFailed      int64 `json:"mediaFailed"`
	AIProcessed      int64 `json:"aiProcessed"`
	AIFailed         int64 `json:"aiFailed"`
	BatchesProcessed int64 `json:"batchesProcessed"`
	DurationMs       int64 `json:"durationMs"`
}

// Orchestrator chạy một đơn vị công việc có giới hạn: quét batch chín,
// drain AI legacy queue rồi media queue, chốt counters.
// Một run là single-threaded, scheduler bên ngoài đảm bảo không chồng run.
type Orchestrator struct {
	store     QueueSource
	configs   ConfigSource
	responder BatchResponder
	media     MediaJobProcessor
	retry     *RetryManager
	stats     StatsSink
	log       *logrus.Logger

	mediaDrainLimit int
	aiDrainLimit    int

	// defaultBatchWindow là debounce window của deployment khi config connection không set
	defaultBatchWindow int

	now func() time.Time
}

func NewOrchestrator(store QueueSource, configs ConfigSource, responder BatchResponder, media MediaJobProcessor, retry *RetryManager, stats StatsSink, mediaDrainLimit, aiDrainLimit, defaultBatchWindow int) *Orchestrator {
	if mediaDrainLimit <= 0 {
		mediaDrainLimit = 10
	}
	if aiDrainLimit <= 0 {
		aiDrainLimit = 5
	}
	return &Orchestrator{
		store:              store,
		configs:            configs,
		responder:          responder,
		media:              media,
		retry:              retry,
		stats:              stats,
		log:                logger.GetAppLogger(),
		mediaDrainLimit:    mediaDrainLimit,
		aiDrainLimit:       aiDrainLimit,
		defaultBatchWindow: defaultBatchWindow,
		now:                time.Now,
	}
}

// Run thực hiện một run trọn vẹn và trả về summary.
// Lỗi của từng item được cô lập (kể cả panic) — một item hỏng không
// dừng được run, chỉ lỗi đọc queue mới làm Run trả error.
func (o *Orchestrator) Run(ctx context.Context) (*RunSummary, error) {
	start := o.now()
	summary := &RunSummary{}
	o.log.Infof("⚙️ [PIPELINE] Bắt đầu run")

	if err := o.processBatches(ctx, summary); err != nil {
		return nil, err
	}
	if err := o.drainAIQueue(ctx, summary); err != nil {
		return nil, err
	}
	if err := o.drainMediaQueue(ctx, summary); err != nil {
		return nil, err
	}

	deltas := map[string]int64{
		"mediaProcessed":   summary.MediaProcessed,
		"mediaFailed":      summary.MediaFailed,
		"aiProcessed":      summary.AIProcessed,
		"aiFailed":         summary.AIFailed,
		"batchesProcessed": summary.BatchesProcessed,
	}
	if err := o.stats.IncrCounters(ctx, deltas); err != nil {
		o.log.Errorf("⚙️ [PIPELINE] Không persist được counters: %v", err)
	}

	summary.DurationMs = o.now().Sub(start).Milliseconds()
	o.log.Infof("⚙️ [PIPELINE] Run xong trong %dms: media=%d/%d, ai=%d/%d, batches=%d",
		summary.DurationMs, summary.MediaProcessed, summary.MediaFailed,
		summary.AIProcessed, summary.AIFailed, summary.BatchesProcessed)
	return summary, nil
}

// processBatches quét toàn bộ pending batches, xử lý các batch đã chín.
// Batch đã chín bị xóa vô điều kiện sau một lần xử lý bất kể kết quả —
// "retry" của batch là message inbound tiếp theo tạo batch mới.
func (o *Orchestrator) processBatches(ctx context.Context, summary *RunSummary) error {
	batches, err := o.store.ScanBatches(ctx)
	if err != nil {
		return fmt.Errorf("không quét được pending batches: %w", err)
	}

	for _, b := range batches {
		cfg := o.lookupConfig(ctx, b.ConnectionID)
		if !batch.IsMature(b, cfg.BatchWindowSeconds(o.defaultBatchWindow), o.now()) {
			continue
		}

		summary.BatchesProcessed++
		err := o.runProtected(func() error {
			if !cfg.Enabled {
				o.log.Infof("🧵 [BATCH] Agent của connection %s đã tắt, bỏ qua batch", b.ConnectionID.Hex())
				return nil
			}
			return o.responder.RespondToBatch(ctx, b, cfg)
		})
		if err != nil {
			summary.AIFailed++
			o.log.Errorf("🧵 [BATCH] Xử lý batch của conversation %s thất bại: %v", b.ConversationID.Hex(), err)
		} else {
			summary.AIProcessed++
		}

		if err := o.store.DeleteBatch(ctx, b.ConversationID); err != nil {
			o.log.Errorf("🧵 [BATCH] Không xóa được batch của conversation %s: %v", b.ConversationID.Hex(), err)
		}
	}
	return nil
}

// drainAIQueue xử lý tối đa aiDrainLimit items từ AI legacy queue
func (o *Orchestrator) drainAIQueue(ctx context.Context, summary *RunSummary) error {
	items, err := o.store.PeekBatch(ctx, queuemodels.QueueAIAgentLegacy, o.aiDrainLimit)
	if err != nil {
		return fmt.Errorf("không đọc được AI legacy queue: %w", err)
	}

	for _, item := range items {
		jobErr := o.runProtected(func() error {
			if item.AIAgent == nil {
				return fmt.Errorf("queue item %s không có AI payload", item.ID.Hex())
			}
			cfg := o.lookupConfig(ctx, item.AIAgent.ConnectionID)
			if !cfg.Enabled {
				return nil
			}
			return o.responder.RespondToLegacyJob(ctx, *item.AIAgent, cfg)
		})

		if jobErr != nil {
			summary.AIFailed++
		} else {
			summary.AIProcessed++
		}
		if err := o.retry.Settle(ctx, item, jobErr); err != nil {
			o.log.Errorf("⚙️ [PIPELINE] Không chốt được AI item %s: %v", item.ID.Hex(), err)
		}
	}
	return nil
}

// drainMediaQueue xử lý tối đa mediaDrainLimit items từ media queue
func (o *Orchestrator) drainMediaQueue(ctx context.Context, summary *RunSummary) error {
	items, err := o.store.PeekBatch(ctx, queuemodels.QueueMediaProcessing, o.mediaDrainLimit)
	if err != nil {
		return fmt.Errorf("không đọc được media queue: %w", err)
	}

	for _, item := range items {
		jobErr := o.runProtected(func() error {
			if item.Media == nil {
				return fmt.Errorf("queue item %s không có media payload", item.ID.Hex())
			}
			return o.media.Process(ctx, *item.Media)
		})

		if jobErr != nil {
			summary.MediaFailed++
		} else {
			summary.MediaProcessed++
		}
		if err := o.retry.Settle(ctx, item, jobErr); err != nil {
			o.log.Errorf("⚙️ [PIPELINE] Không chốt được media item %s: %v", item.ID.Hex(), err)
		}
	}
	return nil
}

// lookupConfig tra agent config của connection; thiếu config thì dùng
// zero-value (defaults áp dụng, Enabled=false)
func (o *Orchestrator) lookupConfig(ctx context.Context, connectionID primitive.ObjectID) *agentmodels.AIAgentConfig {
	cfg, err := o.configs.FindByConnectionId(ctx, connectionID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			o.log.Errorf("⚙️ [PIPELINE] Không tra được agent config của connection %s: %v", connectionID.Hex(), err)
		}
		return &agentmodels.AIAgentConfig{ConnectionID: connectionID}
	}
	return &cfg
}

// runProtected cô lập panic của một item thành error thường
func (o *Orchestrator) runProtected(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic khi xử lý item: %v", r)
		}
	}()
	return fn()
}
