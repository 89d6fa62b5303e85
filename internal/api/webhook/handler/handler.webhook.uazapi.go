// Package webhookhdl - handler nhận webhook message từ UAZAPI gateway.
package webhookhdl

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	agentsvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/agent/service"
	basehdl "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/base/handler"
	connectionsvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/connection/service"
	contactsvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/contact/service"
	conversationsvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/conversation/service"
	messagemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/message/models"
	messagesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/message/service"
	queuemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/models"
	queuesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/service"
	webhookdto "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/webhook/dto"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/batch"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
)

// mediaKinds là các message type cần qua media pipeline
var mediaKinds = map[string]bool{
	"image":    true,
	"video":    true,
	"audio":    true,
	"document": true,
	"sticker":  true,
}

// UazapiWebhookHandler nhận message event từ gateway: lưu message record,
// enqueue media job nếu là media, và append vào batch nếu agent bật.
type UazapiWebhookHandler struct {
	connections   *connectionsvc.ConnectionService
	contacts      *contactsvc.ContactService
	conversations *conversationsvc.ConversationService
	messages      *messagesvc.MessageService
	agentConfigs  *agentsvc.AgentConfigService
	queueStore    *queuesvc.QueueStore
	accumulator   *batch.Accumulator
}

// NewUazapiWebhookHandler tạo mới UazapiWebhookHandler
func NewUazapiWebhookHandler() (*UazapiWebhookHandler, error) {
	connections, err := connectionsvc.NewConnectionService()
	if err != nil {
		return nil, err
	}
	contacts, err := contactsvc.NewContactService()
	if err != nil {
		return nil, err
	}
	conversations, err := conversationsvc.NewConversationService()
	if err != nil {
		return nil, err
	}
	messages, err := messagesvc.NewMessageService()
	if err != nil {
		return nil, err
	}
	agentConfigs, err := agentsvc.NewAgentConfigService()
	if err != nil {
		return nil, err
	}
	queueStore, err := queuesvc.NewQueueStore()
	if err != nil {
		return nil, err
	}
	return &UazapiWebhookHandler{
		connections:   connections,
		contacts:      contacts,
		conversations: conversations,
		messages:      messages,
		agentConfigs:  agentConfigs,
		queueStore:    queueStore,
		accumulator:   batch.NewAccumulator(queueStore),
	}, nil
}

// HandleMessageEvent nhận webhook message mới từ UAZAPI và trả 200 OK.
// Message do chính mình gửi (fromMe) chỉ ack, không xử lý.
func (h *UazapiWebhookHandler) HandleMessageEvent(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		log := logger.GetAppLogger()
		ctx := c.Context()

		var req webhookdto.UazapiWebhookRequest
		if err := c.Bind().Body(&req); err != nil {
			basehdl.Error(c, common.StatusBadRequest, common.ErrCodeValidationInput, "Body webhook không hợp lệ: "+err.Error())
			return nil
		}
		if err := global.Validate.Struct(req); err != nil {
			basehdl.Error(c, common.StatusBadRequest, common.ErrCodeValidationInput, "Webhook thiếu trường bắt buộc: "+err.Error())
			return nil
		}

		token := req.Token
		if token == "" {
			token = c.Get("token")
		}
		connection, err := h.connections.FindByInstanceToken(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				basehdl.Error(c, common.StatusUnauthorized, common.ErrCodeValidationInput, "Instance token không hợp lệ")
				return nil
			}
			return err
		}

		if req.Message.FromMe {
			basehdl.Success(c, fiber.Map{"ignored": true, "reason": "fromMe"})
			return nil
		}

		contact, err := h.contacts.FindOrCreateByPhone(ctx, connection.CompanyID, req.Message.Phone, req.Message.SenderName)
		if err != nil {
			return err
		}
		conversation, err := h.conversations.FindOrCreate(ctx, connection.CompanyID, connection.ID, contact.ID)
		if err != nil {
			return err
		}

		isMedia := mediaKinds[req.Message.Type]
		record := messagemodels.MessageRecord{
			ConversationID:    conversation.ID,
			ConnectionID:      connection.ID,
			CompanyID:         connection.CompanyID,
			ExternalMessageID: req.Message.ID,
			Content:           req.Message.Text,
			MessageType:       req.Message.Type,
		}
		if isMedia {
			record.Status = messagemodels.MessageStatusPending
		}
		record, err = h.messages.InsertInbound(ctx, record)
		if err != nil {
			return err
		}

		if isMedia {
			h.enqueueMediaJob(ctx, record, token, req)
		}

		h.appendToBatch(ctx, record, contact.Name, contact.Phone, token)

		if err := h.conversations.BumpLastMessageAt(ctx, conversation.ID); err != nil {
			log.WithError(err).Warn("🔗 [WEBHOOK] Không bump được lastMessageAt")
		}

		basehdl.Success(c, fiber.Map{"messageId": record.ID.Hex()})
		return nil
	})
}

// enqueueMediaJob đẩy media job vào queue; lỗi enqueue không fail webhook
// (message record đã pending, lần enqueue sau của cùng media sẽ xử lý lại)
func (h *UazapiWebhookHandler) enqueueMediaJob(ctx context.Context, record messagemodels.MessageRecord, token string, req webhookdto.UazapiWebhookRequest) {
	log := logger.GetAppLogger()
	item := queuemodels.QueueItem{
		Queue: queuemodels.QueueMediaProcessing,
		Type:  queuemodels.JobTypeMedia,
		Media: &queuemodels.MediaJob{
			MessageRecordID:   record.ID,
			ExternalMessageID: record.ExternalMessageID,
			MediaKind:         record.MessageType,
			CompanyID:         record.CompanyID,
			ConnectionID:      record.ConnectionID,
			InstanceToken:     token,
			DeclaredFileName:  req.Message.FileName,
			DeclaredMimeType:  req.Message.MimeType,
		},
	}
	if _, err := h.queueStore.Enqueue(ctx, queuemodels.QueueMediaProcessing, item); err != nil {
		log.WithError(err).Error("🔗 [WEBHOOK] Không enqueue được media job")
	} else {
		log.Infof("🔗 [WEBHOOK] Đã enqueue media job %s cho message %s", record.MessageType, record.ID.Hex())
	}
}

// appendToBatch gom message vào pending batch nếu agent của connection đang bật.
// Với media, nội dung batch là placeholder theo loại media.
func (h *UazapiWebhookHandler) appendToBatch(ctx context.Context, record messagemodels.MessageRecord, contactName, contactPhone, token string) {
	log := logger.GetAppLogger()

	cfg, err := h.agentConfigs.FindByConnectionId(ctx, record.ConnectionID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			log.WithError(err).Warn("🔗 [WEBHOOK] Không tra được agent config")
		}
		return
	}
	if !cfg.Enabled {
		return
	}

	content := record.Content
	mediaType := ""
	if mediaKinds[record.MessageType] {
		mediaType = record.MessageType
		if content == "" {
			content = "[" + record.MessageType + "]"
		}
	}

	err = h.accumulator.Append(ctx, queuemodels.PendingBatch{
		ConversationID: record.ConversationID,
		ConnectionID:   record.ConnectionID,
		CompanyID:      record.CompanyID,
		ContactName:    contactName,
		ContactPhone:   contactPhone,
		InstanceToken:  token,
	}, queuemodels.BatchMessage{
		Content:    content,
		MediaType:  mediaType,
		ReceivedAt: time.Now().Unix(),
	})
	if err != nil {
		log.WithError(err).Error("🔗 [WEBHOOK] Không append được message vào batch")
	}
}
