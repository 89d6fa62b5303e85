package common

// HTTP status codes dùng trong response chuẩn hóa
const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusNotFound            = 404
	StatusInternalServerError = 500
)

// Message chuẩn cho response thành công
const MsgSuccess = "Thành công"
