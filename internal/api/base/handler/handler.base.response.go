// Package basehdl chứa các helper response dùng chung cho mọi handler.
package basehdl

import (
	"github.com/gofiber/fiber/v3"

	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
)

// JSONResponse ghi status code và body JSON, log lỗi serialize nếu có
func JSONResponse(c fiber.Ctx, statusCode int, body fiber.Map) {
	if err := c.Status(statusCode).JSON(body); err != nil {
		logger.GetErrorLogger().WithError(err).Error("Không serialize được response JSON")
	}
}

// SafeHandlerWrapper bọc handler, cô lập panic thành 500 thay vì sập request
func SafeHandlerWrapper(c fiber.Ctx, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetErrorLogger().WithFields(map[string]interface{}{
				"panic": r,
				"path":  c.Path(),
			}).Error("Panic trong handler")
			JSONResponse(c, common.StatusInternalServerError, fiber.Map{
				"code":    common.ErrCodeInternalServer.Code,
				"message": common.ErrCodeInternalServer.Description,
				"status":  "error",
			})
			err = nil
		}
	}()
	return fn()
}

// Success trả về response thành công chuẩn hóa
func Success(c fiber.Ctx, data interface{}) {
	JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// Error trả về response lỗi chuẩn hóa
func Error(c fiber.Ctx, statusCode int, code common.ErrorCode, message string) {
	JSONResponse(c, statusCode, fiber.Map{
		"code":    code.Code,
		"message": message,
		"status":  "error",
	})
}
