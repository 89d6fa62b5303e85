// Package pipeline - Test Orchestrator: maturity, unconditional batch delete, drain limits, counters.
package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	agentmodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/agent/models"
	queuemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
)

type fakeQueueSource struct {
	fakeRetryStore
	batches        []queuemodels.PendingBatch
	deletedBatches []primitive.ObjectID
	queueItems     map[string][]queuemodels.QueueItem
}

func (f *fakeQueueSource) ScanBatches(ctx context.Context) ([]queuemodels.PendingBatch, error) {
	return f.batches, nil
}

func (f *fakeQueueSource) DeleteBatch(ctx context.Context, conversationID primitive.ObjectID) error {
	f.deletedBatches = append(f.deletedBatches, conversationID)
	return nil
}

func (f *fakeQueueSource) PeekBatch(ctx context.Context, queueName string, n int) ([]queuemodels.QueueItem, error) {
	items := f.queueItems[queueName]
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

type fakeConfigSource struct {
	configs map[primitive.ObjectID]agentmodels.AIAgentConfig
}

func (f *fakeConfigSource) FindByConnectionId(ctx context.Context, connectionID primitive.ObjectID) (agentmodels.AIAgentConfig, error) {
	cfg, ok := f.configs[connectionID]
	if !ok {
		return agentmodels.AIAgentConfig{}, common.ErrNotFound
	}
	return cfg, nil
}

type fakeResponder struct {
	batchCalls  []queuemodels.PendingBatch
	legacyCalls []queuemodels.AIAgentLegacyJob
	err         error
	panicMsg    string
}

func (f *fakeResponder) RespondToBatch(ctx context.Context, b queuemodels.PendingBatch, cfg *agentmodels.AIAgentConfig) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.batchCalls = append(f.batchCalls, b)
	return f.err
}

func (f *fakeResponder) RespondToLegacyJob(ctx context.Context, job queuemodels.AIAgentLegacyJob, cfg *agentmodels.AIAgentConfig) error {
	f.legacyCalls = append(f.legacyCalls, job)
	return f.err
}

type fakeMediaProcessor struct {
	jobs []queuemodels.MediaJob
	err  error
}

func (f *fakeMediaProcessor) Process(ctx context.Context, job queuemodels.MediaJob) error {
	f.jobs = append(f.jobs, job)
	return f.err
}

type fakeStatsSink struct {
	deltas map[string]int64
}

func (f *fakeStatsSink) IncrCounters(ctx context.Context, deltas map[string]int64) error {
	f.deltas = deltas
	return nil
}

func fixedNow() time.Time {
	return time.Unix(1_700_000_100, 0)
}

func matureBatch(connectionID primitive.ObjectID) queuemodels.PendingBatch {
	return queuemodels.PendingBatch{
		ID:             primitive.NewObjectID(),
		ConversationID: primitive.NewObjectID(),
		ConnectionID:   connectionID,
		LastUpdated:    fixedNow().Unix() - 100, // quá window từ lâu
	}
}

func enabledConfigFor(connectionID primitive.ObjectID) map[primitive.ObjectID]agentmodels.AIAgentConfig {
	return map[primitive.ObjectID]agentmodels.AIAgentConfig{
		connectionID: {ConnectionID: connectionID, Enabled: true},
	}
}

func newTestOrchestrator(store *fakeQueueSource, configs *fakeConfigSource, responder *fakeResponder, media *fakeMediaProcessor, stats *fakeStatsSink) *Orchestrator {
	o := NewOrchestrator(store, configs, responder, media, NewRetryManager(&store.fakeRetryStore, 3), stats, 10, 5, 0)
	o.now = fixedNow
	return o
}

func TestOrchestrator_BatchChinDuocXuLyVaXoa(t *testing.T) {
	connectionID := primitive.NewObjectID()
	store := &fakeQueueSource{
		batches:    []queuemodels.PendingBatch{matureBatch(connectionID)},
		queueItems: map[string][]queuemodels.QueueItem{},
	}
	configs := &fakeConfigSource{configs: enabledConfigFor(connectionID)}
	responder := &fakeResponder{}
	stats := &fakeStatsSink{}

	summary, err := newTestOrchestrator(store, configs, responder, &fakeMediaProcessor{}, stats).Run(context.Background())
	if err != nil {
		t.Fatalf("Run thất bại: %v", err)
	}
	if len(responder.batchCalls) != 1 {
		t.Errorf("batch chín phải được respond, calls=%d", len(responder.batchCalls))
	}
	if len(store.deletedBatches) != 1 {
		t.Errorf("batch phải bị xóa sau xử lý, deleted=%d", len(store.deletedBatches))
	}
	if summary.BatchesProcessed != 1 || summary.AIProcessed != 1 {
		t.Errorf("summary sai: %+v", summary)
	}
}

func TestOrchestrator_BatchChuaChinKhongDongDen(t *testing.T) {
	connectionID := primitive.NewObjectID()
	b := matureBatch(connectionID)
	b.LastUpdated = fixedNow().Unix() - 74 // window mặc định 75s, mới 74 giây
	store := &fakeQueueSource{
		batches:    []queuemodels.PendingBatch{b},
		queueItems: map[string][]queuemodels.QueueItem{},
	}
	configs := &fakeConfigSource{configs: enabledConfigFor(connectionID)}
	responder := &fakeResponder{}

	summary, err := newTestOrchestrator(store, configs, responder, &fakeMediaProcessor{}, &fakeStatsSink{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run thất bại: %v", err)
	}
	if len(responder.batchCalls) != 0 {
		t.Error("batch chưa chín không được respond")
	}
	if len(store.deletedBatches) != 0 {
		t.Error("batch chưa chín không được xóa")
	}
	if summary.BatchesProcessed != 0 {
		t.Errorf("batchesProcessed phải là 0, nhận được %d", summary.BatchesProcessed)
	}
}

func TestOrchestrator_WindowLayTuDeploymentDefault(t *testing.T) {
	connectionID := primitive.NewObjectID()
	b := matureBatch(connectionID)
	b.LastUpdated = fixedNow().Unix() - 40 // chín với window 30s, chưa chín với 75s
	store := &fakeQueueSource{
		batches:    []queuemodels.PendingBatch{b},
		queueItems: map[string][]queuemodels.QueueItem{},
	}
	configs := &fakeConfigSource{configs: enabledConfigFor(connectionID)}
	responder := &fakeResponder{}

	// DEFAULT_BATCH_WINDOW_SECONDS=30 của deployment phải được áp dụng
	// khi config connection không set MessageBatchSeconds
	o := NewOrchestrator(store, configs, responder, &fakeMediaProcessor{}, NewRetryManager(&store.fakeRetryStore, 3), &fakeStatsSink{}, 10, 5, 30)
	o.now = fixedNow

	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run thất bại: %v", err)
	}
	if len(responder.batchCalls) != 1 {
		t.Errorf("batch 40s phải chín với window 30s của deployment, calls=%d", len(responder.batchCalls))
	}
	if summary.BatchesProcessed != 1 {
		t.Errorf("batchesProcessed phải là 1, nhận được %d", summary.BatchesProcessed)
	}
}

func TestOrchestrator_BatchXoaVoDieuKienKhiResponderLoi(t *testing.T) {
	connectionID := primitive.NewObjectID()
	store := &fakeQueueSource{
		batches:    []queuemodels.PendingBatch{matureBatch(connectionID)},
		queueItems: map[string][]queuemodels.QueueItem{},
	}
	configs := &fakeConfigSource{configs: enabledConfigFor(connectionID)}
	responder := &fakeResponder{err: errors.New("generation service down")}

	summary, err := newTestOrchestrator(store, configs, responder, &fakeMediaProcessor{}, &fakeStatsSink{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run thất bại: %v", err)
	}
	if len(store.deletedBatches) != 1 {
		t.Error("batch phải bị xóa kể cả khi responder lỗi")
	}
	if summary.AIFailed != 1 {
		t.Errorf("aiFailed phải là 1, nhận được %d", summary.AIFailed)
	}
}

func TestOrchestrator_PanicKhongDungRun(t *testing.T) {
	connectionID := primitive.NewObjectID()
	store := &fakeQueueSource{
		batches:    []queuemodels.PendingBatch{matureBatch(connectionID)},
		queueItems: map[string][]queuemodels.QueueItem{},
	}
	configs := &fakeConfigSource{configs: enabledConfigFor(connectionID)}
	responder := &fakeResponder{panicMsg: "nil pointer giả lập"}

	summary, err := newTestOrchestrator(store, configs, responder, &fakeMediaProcessor{}, &fakeStatsSink{}).Run(context.Background())
	if err != nil {
		t.Fatalf("panic của một item không được làm Run trả lỗi: %v", err)
	}
	if summary.AIFailed != 1 {
		t.Errorf("panic phải đếm vào aiFailed, nhận được %d", summary.AIFailed)
	}
	if len(store.deletedBatches) != 1 {
		t.Error("batch vẫn phải bị xóa sau panic")
	}
}

func TestOrchestrator_DrainLimits(t *testing.T) {
	connectionID := primitive.NewObjectID()
	var mediaItems, aiItems []queuemodels.QueueItem
	for i := 0; i < 15; i++ {
		mediaItems = append(mediaItems, queuemodels.QueueItem{
			ID:    primitive.NewObjectID(),
			Queue: queuemodels.QueueMediaProcessing,
			Type:  queuemodels.JobTypeMedia,
			Media: &queuemodels.MediaJob{MessageRecordID: primitive.NewObjectID()},
		})
	}
	for i := 0; i < 8; i++ {
		aiItems = append(aiItems, queuemodels.QueueItem{
			ID:      primitive.NewObjectID(),
			Queue:   queuemodels.QueueAIAgentLegacy,
			Type:    queuemodels.JobTypeAIAgentLegacy,
			AIAgent: &queuemodels.AIAgentLegacyJob{ConnectionID: connectionID},
		})
	}
	store := &fakeQueueSource{
		queueItems: map[string][]queuemodels.QueueItem{
			queuemodels.QueueMediaProcessing: mediaItems,
			queuemodels.QueueAIAgentLegacy:   aiItems,
		},
	}
	configs := &fakeConfigSource{configs: enabledConfigFor(connectionID)}
	responder := &fakeResponder{}
	media := &fakeMediaProcessor{}
	stats := &fakeStatsSink{}

	summary, err := newTestOrchestrator(store, configs, responder, media, stats).Run(context.Background())
	if err != nil {
		t.Fatalf("Run thất bại: %v", err)
	}
	if len(media.jobs) != 10 {
		t.Errorf("media queue phải drain tối đa 10, đã xử lý %d", len(media.jobs))
	}
	if len(responder.legacyCalls) != 5 {
		t.Errorf("AI legacy queue phải drain tối đa 5, đã xử lý %d", len(responder.legacyCalls))
	}
	if summary.MediaProcessed != 10 || summary.AIProcessed != 5 {
		t.Errorf("summary sai: %+v", summary)
	}
	// Mọi item thành công phải được remove khỏi queue
	if len(store.removed) != 15 {
		t.Errorf("15 item thành công phải được remove, removed=%d", len(store.removed))
	}
	if stats.deltas["mediaProcessed"] != 10 || stats.deltas["aiProcessed"] != 5 {
		t.Errorf("counters persist sai: %v", stats.deltas)
	}
}

func TestOrchestrator_MediaFailDuocSettle(t *testing.T) {
	store := &fakeQueueSource{
		queueItems: map[string][]queuemodels.QueueItem{
			queuemodels.QueueMediaProcessing: {{
				ID:    primitive.NewObjectID(),
				Queue: queuemodels.QueueMediaProcessing,
				Type:  queuemodels.JobTypeMedia,
				Media: &queuemodels.MediaJob{MessageRecordID: primitive.NewObjectID()},
			}},
		},
	}
	configs := &fakeConfigSource{configs: map[primitive.ObjectID]agentmodels.AIAgentConfig{}}
	media := &fakeMediaProcessor{err: errors.New("download fail")}

	summary, err := newTestOrchestrator(store, configs, &fakeResponder{}, media, &fakeStatsSink{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run thất bại: %v", err)
	}
	if summary.MediaFailed != 1 {
		t.Errorf("mediaFailed phải là 1, nhận được %d", summary.MediaFailed)
	}
	if len(store.requeued) != 1 {
		t.Errorf("item fail lần đầu phải được requeue, requeued=%d", len(store.requeued))
	}
}
