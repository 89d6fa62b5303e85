package aiagent

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	agentmodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/agent/models"
	messagemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/message/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/speech"
)

// MessageSender gửi message ra gateway
type MessageSender interface {
	SendText(ctx context.Context, phone string, text string, instanceToken string) (string, error)
	SendVoice(ctx context.Context, phone string, audioURL string, instanceToken string) (string, error)
}

// Synthesizer generate audio từ text, trả về URL
type Synthesizer interface {
	Synthesize(ctx context.Context, req speech.SynthesizeRequest) (string, error)
}

// OutboundStore lưu message record outbound cho mỗi chunk đã gửi
type OutboundStore interface {
	InsertOutbound(ctx context.Context, record messagemodels.MessageRecord) (messagemodels.MessageRecord, error)
}

// ConversationBumper cập nhật lastMessageAt sau khi gửi xong toàn bộ reply
type ConversationBumper interface {
	BumpLastMessageAt(ctx context.Context, id primitive.ObjectID) error
}

// DeliveryTarget định danh đích gửi của một reply
type DeliveryTarget struct {
	ConversationID primitive.ObjectID
	ConnectionID   primitive.ObjectID
	CompanyID      primitive.ObjectID
	ContactPhone   string
	InstanceToken  string
}

// Sender tách reply thành chunks và gửi lần lượt với pacing delay giữa các chunk.
// Delay giữa chunk là yêu cầu về hành vi (mô phỏng người gõ), không phải tối ưu —
// các chunk trong một reply phải gửi tuần tự nghiêm ngặt.
type Sender struct {
	gateway       MessageSender
	synthesizer   Synthesizer
	messages      OutboundStore
	conversations ConversationBumper
	log           *logrus.Logger

	// defaultSplitDelay là pacing delay của deployment khi config connection không set
	defaultSplitDelay float64

	// sleep inject được để test không phải chờ pacing delay thật
	sleep func(time.Duration)
}

func NewSender(gw MessageSender, synthesizer Synthesizer, messages OutboundStore, conversations ConversationBumper, defaultSplitDelay float64) *Sender {
	return &Sender{
		gateway:           gw,
		synthesizer:       synthesizer,
		messages:          messages,
		conversations:     conversations,
		log:               logger.GetAppLogger(),
		defaultSplitDelay: defaultSplitDelay,
		sleep:             time.Sleep,
	}
}

// SendReply gửi response của agent tới contact.
// Nếu agent yêu cầu audio thì synthesize trên toàn bộ text chưa tách (chỉ ở chunk 0),
// fallback về gửi text nếu synthesis hoặc voice-send thất bại.
func (s *Sender) SendReply(ctx context.Context, target DeliveryTarget, result *GenerateResult, cfg *agentmodels.AIAgentConfig) error {
	chunks := []string{result.ResponseText}
	if cfg.SplitResponseEnabled && !result.ShouldGenerateAudio {
		chunks = SplitResponse(result.ResponseText)
	}

	s.log.Infof("🤖 [AI_AGENT] Gửi reply %d chunk tới conversation %s", len(chunks), target.ConversationID.Hex())

	for i, chunk := range chunks {
		if i > 0 {
			s.sleep(time.Duration(cfg.SplitDelay(s.defaultSplitDelay) * float64(time.Second)))
		}

		audioUsed := false
		var externalID string
		var err error

		if i == 0 && result.ShouldGenerateAudio {
			externalID, err = s.sendAsVoice(ctx, target, result)
			if err != nil {
				s.log.Warnf("🤖 [AI_AGENT] Gửi voice thất bại, fallback về text: %v", err)
			} else {
				audioUsed = true
			}
		}

		if !audioUsed {
			externalID, err = s.gateway.SendText(ctx, target.ContactPhone, chunk, target.InstanceToken)
			if err != nil {
				return fmt.Errorf("gửi chunk %d/%d thất bại: %w", i+1, len(chunks), err)
			}
		}

		if err := s.persistChunk(ctx, target, cfg, chunk, externalID, i, len(chunks), audioUsed); err != nil {
			// Message đã đi ra gateway rồi, lỗi lưu record không rollback được
			s.log.Errorf("🤖 [AI_AGENT] Không lưu được outbound record cho chunk %d: %v", i, err)
		}
	}

	if err := s.conversations.BumpLastMessageAt(ctx, target.ConversationID); err != nil {
		s.log.Errorf("🤖 [AI_AGENT] Không bump được lastMessageAt: %v", err)
	}

	return nil
}

// sendAsVoice synthesize toàn bộ response text (không tách) và gửi qua gateway
func (s *Sender) sendAsVoice(ctx context.Context, target DeliveryTarget, result *GenerateResult) (string, error) {
	audioURL, err := s.synthesizer.Synthesize(ctx, speech.SynthesizeRequest{
		Text:         result.ResponseText,
		VoiceName:    result.VoiceName,
		Speed:        result.SpeechSpeed,
		Temperature:  result.AudioTemperature,
		LanguageCode: result.LanguageCode,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize thất bại: %w", err)
	}
	return s.gateway.SendVoice(ctx, target.ContactPhone, audioURL, target.InstanceToken)
}

func (s *Sender) persistChunk(ctx context.Context, target DeliveryTarget, cfg *agentmodels.AIAgentConfig, chunk string, externalID string, index int, total int, audioUsed bool) error {
	messageType := "text"
	if audioUsed {
		messageType = "audio"
	}
	_, err := s.messages.InsertOutbound(ctx, messagemodels.MessageRecord{
		ConversationID:    target.ConversationID,
		ConnectionID:      target.ConnectionID,
		CompanyID:         target.CompanyID,
		ExternalMessageID: externalID,
		Content:           chunk,
		MessageType:       messageType,
		Metadata: map[string]interface{}{
			"sentByAIAgent": true,
			"agentId":       cfg.ID.Hex(),
			"agentName":     cfg.AgentName,
			"partIndex":     index,
			"totalParts":    total,
			"audioUsed":     audioUsed,
		},
	})
	return err
}
