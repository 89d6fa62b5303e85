// Package common chứa các hằng số, sentinel error và kiểu lỗi dùng chung cho toàn bộ pipeline.
package common

import "errors"

// Các sentinel error dùng chung, so sánh bằng errors.Is
var (
	ErrNotFound      = errors.New("không tìm thấy tài nguyên")        // Bản ghi không tồn tại
	ErrInvalidInput  = errors.New("dữ liệu đầu vào không hợp lệ")     // Input sai định dạng
	ErrRequiredField = errors.New("thiếu trường bắt buộc")            // Thiếu field bắt buộc
	ErrInvalidState  = errors.New("trạng thái không hợp lệ")          // Chuyển trạng thái không được phép
	ErrGatewayDown   = errors.New("messaging gateway không phản hồi") // Gateway lỗi hoặc timeout
)

// ErrorCode định nghĩa mã lỗi chi tiết trả về cho client
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: PIPE_001)
	Category    string // Phân loại lỗi
	Description string // Mô tả chi tiết
}

// Các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		Description: "Lỗi dữ liệu đầu vào",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		Description: "Lỗi truy vấn dữ liệu",
	}

	// Pipeline Errors (PIPE_xxx)
	ErrCodePipelineRun = ErrorCode{
		Code:        "PIPE_001",
		Category:    "Pipeline",
		Description: "Lỗi khi chạy delivery pipeline",
	}
)
