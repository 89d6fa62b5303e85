package gateway

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// DownloadResult là kết quả đã chuẩn hóa của một lần download media từ UAZAPI
type DownloadResult struct {
	Data     []byte // Bytes đã decode từ base64
	MimeType string // MIME type gateway báo về (có thể rỗng)
	FileSize int64  // Kích thước file theo gateway (0 nếu không báo)
}

// base64Keys là các tên field mà UAZAPI có thể dùng để trả payload base64.
// Gateway trả shape không ổn định giữa các phiên bản — mọi tolerance nằm ở đây,
// không rải optional-chaining ra ngoài.
var base64Keys = []string{"base64", "data", "file", "mediaBase64", "fileBase64"}

// mimeKeys là các tên field có thể chứa MIME type
var mimeKeys = []string{"mimetype", "mimeType", "contentType", "content_type"}

// ParseDownloadPayload parse body JSON của download endpoint thành DownloadResult.
// Trả lỗi nếu không tìm thấy payload base64 dưới bất kỳ key nào, hoặc decode thất bại.
func ParseDownloadPayload(body []byte) (*DownloadResult, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("gateway trả về JSON không hợp lệ: %w", err)
	}

	// Một số phiên bản gateway bọc kết quả trong "message" hoặc "result"
	for _, wrapper := range []string{"message", "result", "response"} {
		if inner, ok := payload[wrapper].(map[string]interface{}); ok {
			payload = inner
			break
		}
	}

	raw := findStringField(payload, base64Keys)
	if raw == "" {
		return nil, fmt.Errorf("download payload không chứa dữ liệu base64 (đã thử các key: %s)", strings.Join(base64Keys, ", "))
	}

	// Data URI ("data:image/jpeg;base64,....") — cắt prefix trước khi decode
	if idx := strings.Index(raw, "base64,"); idx >= 0 {
		raw = raw[idx+len("base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		// Thử RawStdEncoding cho payload không padding
		data, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("không decode được payload base64: %w", err)
		}
	}

	result := &DownloadResult{
		Data:     data,
		MimeType: findStringField(payload, mimeKeys),
		FileSize: int64(len(data)),
	}

	if size, ok := payload["fileSize"].(float64); ok && size > 0 {
		result.FileSize = int64(size)
	}

	return result, nil
}

// findStringField trả về giá trị string đầu tiên tìm thấy theo danh sách keys
func findStringField(payload map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if value, ok := payload[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
