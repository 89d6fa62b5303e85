package global

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	// phone_digits: số điện thoại quốc tế dạng chỉ chữ số (10-15 ký tự)
	_ = Validate.RegisterValidation("phone_digits", validatePhoneDigits)
	// message_type: loại message mà gateway hỗ trợ (text hoặc media)
	_ = Validate.RegisterValidation("message_type", validateMessageType)
}

// validatePhoneDigits kiểm tra số điện thoại chỉ gồm chữ số, độ dài hợp lệ
func validatePhoneDigits(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // optional — dùng kèm required khi bắt buộc
	}
	if len(value) < 10 || len(value) > 15 {
		return false
	}
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// validateMessageType kiểm tra loại message nằm trong danh sách gateway hỗ trợ
func validateMessageType(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	if value == "" {
		return true
	}
	switch value {
	case "text", "image", "video", "audio", "document", "sticker":
		return true
	}
	return false
}
