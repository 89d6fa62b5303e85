package pipeline

import (
	"github.com/oFelixJpedro/connectflow-pro-sub003/config"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/aiagent"
	agentsvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/agent/service"
	conversationsvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/conversation/service"
	messagesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/message/service"
	queuesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/service"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/gateway"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/media"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/speech"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/storage"
)

// BuildOrchestrator lắp ráp orchestrator hoàn chỉnh từ config:
// gateway/storage/speech/generator clients cộng các service dữ liệu.
func BuildOrchestrator(cfg *config.Configuration) (*Orchestrator, error) {
	queueStore, err := queuesvc.NewQueueStore()
	if err != nil {
		return nil, err
	}
	messages, err := messagesvc.NewMessageService()
	if err != nil {
		return nil, err
	}
	conversations, err := conversationsvc.NewConversationService()
	if err != nil {
		return nil, err
	}
	agentConfigs, err := agentsvc.NewAgentConfigService()
	if err != nil {
		return nil, err
	}

	gatewayClient := gateway.NewClient(cfg.UazapiBaseURL)
	storageClient := storage.NewClient(cfg.StorageBaseURL, cfg.StorageBucket, cfg.StorageAPIKey)
	speechClient := speech.NewClient(cfg.SpeechServiceURL, cfg.SpeechServiceKey)
	generator := aiagent.NewGenerator(cfg.AIAgentServiceURL, cfg.AIAgentServiceKey)

	sender := aiagent.NewSender(gatewayClient, speechClient, messages, conversations, cfg.DefaultSplitDelaySeconds)
	responder := aiagent.NewResponder(generator, sender)
	processor := media.NewProcessor(gatewayClient, storageClient, messages)
	retry := NewRetryManager(queueStore, cfg.PipelineMaxAttempts)
	stats := NewStoreStatsSink(queueStore)

	return NewOrchestrator(queueStore, agentConfigs, responder, processor, retry, stats,
		cfg.PipelineMediaDrainLimit, cfg.PipelineAIDrainLimit, cfg.DefaultBatchWindowSeconds), nil
}
