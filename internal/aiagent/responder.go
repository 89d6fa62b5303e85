package aiagent

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	agentmodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/agent/models"
	queuemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
)

// ResponseGenerator là phần của generation service mà responder cần
type ResponseGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// ReplySender gửi một reply đã generate tới contact
type ReplySender interface {
	SendReply(ctx context.Context, target DeliveryTarget, result *GenerateResult, cfg *agentmodels.AIAgentConfig) error
}

// Responder nối generator với sender: generate reply cho một batch (hoặc một
// legacy job đơn lẻ), chờ delaySeconds mô phỏng thời gian gõ, rồi gửi.
type Responder struct {
	generator ResponseGenerator
	sender    ReplySender
	log       *logrus.Logger

	sleep func(time.Duration)
}

func NewResponder(generator ResponseGenerator, sender ReplySender) *Responder {
	return &Responder{
		generator: generator,
		sender:    sender,
		log:       logger.GetAppLogger(),
		sleep:     time.Sleep,
	}
}

// RespondToBatch generate và gửi reply cho một batch đã chín.
// Skip là thành công (không gửi gì); error đếm vào bookkeeping của orchestrator.
func (r *Responder) RespondToBatch(ctx context.Context, b queuemodels.PendingBatch, cfg *agentmodels.AIAgentConfig) error {
	messages := make([]BatchInput, 0, len(b.Messages))
	for _, msg := range b.Messages {
		messages = append(messages, BatchInput{Content: msg.Content, MediaType: msg.MediaType})
	}

	result, err := r.generator.Generate(ctx, GenerateRequest{
		ConversationID: b.ConversationID.Hex(),
		ConnectionID:   b.ConnectionID.Hex(),
		Messages:       messages,
		ContactName:    b.ContactName,
		ContactPhone:   b.ContactPhone,
	})
	if err != nil {
		return fmt.Errorf("generate reply cho batch thất bại: %w", err)
	}
	if result.Outcome == OutcomeSkip {
		r.log.Infof("🤖 [AI_AGENT] Generator skip conversation %s: %s", b.ConversationID.Hex(), result.SkipReason)
		return nil
	}

	r.pause(result.DelaySeconds)

	return r.sender.SendReply(ctx, DeliveryTarget{
		ConversationID: b.ConversationID,
		ConnectionID:   b.ConnectionID,
		CompanyID:      b.CompanyID,
		ContactPhone:   b.ContactPhone,
		InstanceToken:  b.InstanceToken,
	}, result, cfg)
}

// RespondToLegacyJob xử lý một AI job kiểu cũ: một message đơn lẻ không qua batch
func (r *Responder) RespondToLegacyJob(ctx context.Context, job queuemodels.AIAgentLegacyJob, cfg *agentmodels.AIAgentConfig) error {
	result, err := r.generator.Generate(ctx, GenerateRequest{
		ConversationID: job.ConversationID.Hex(),
		ConnectionID:   job.ConnectionID.Hex(),
		Messages:       []BatchInput{{Content: job.Content}},
		ContactName:    job.ContactName,
		ContactPhone:   job.ContactPhone,
	})
	if err != nil {
		return fmt.Errorf("generate reply cho legacy job thất bại: %w", err)
	}
	if result.Outcome == OutcomeSkip {
		r.log.Infof("🤖 [AI_AGENT] Generator skip legacy job của conversation %s: %s", job.ConversationID.Hex(), result.SkipReason)
		return nil
	}

	r.pause(result.DelaySeconds)

	return r.sender.SendReply(ctx, DeliveryTarget{
		ConversationID: job.ConversationID,
		ConnectionID:   job.ConnectionID,
		CompanyID:      job.CompanyID,
		ContactPhone:   job.ContactPhone,
		InstanceToken:  job.InstanceToken,
	}, result, cfg)
}

// pause ngủ delaySeconds mô phỏng "thời gian suy nghĩ" trước khi gửi
func (r *Responder) pause(delaySeconds float64) {
	if delaySeconds > 0 {
		r.sleep(time.Duration(delaySeconds * float64(time.Second)))
	}
}
