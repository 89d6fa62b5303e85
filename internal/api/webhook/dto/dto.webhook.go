// Package webhookdto chứa các DTO request của webhook UAZAPI.
package webhookdto

// UazapiMessagePayload là một message event trong webhook của gateway
type UazapiMessagePayload struct {
	ID         string `json:"id" validate:"required"`
	Phone      string `json:"phone" validate:"required,phone_digits"`
	FromMe     bool   `json:"fromMe"`
	Type       string `json:"type" validate:"required,message_type"` // text | image | video | audio | document | sticker
	Text       string `json:"text"`
	SenderName string `json:"senderName"`
	FileName   string `json:"fileName"` // Tên file khai báo (documents)
	MimeType   string `json:"mimetype"`
}

// UazapiWebhookRequest là body webhook UAZAPI gửi tới khi có message mới.
// Instance token nhận diện connection, nằm trong body hoặc header "token".
type UazapiWebhookRequest struct {
	Event   string               `json:"event" validate:"required"`
	Token   string               `json:"token"`
	Message UazapiMessagePayload `json:"message" validate:"required"`
}
