// Package router đăng ký route webhook UAZAPI (public).
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	webhookhdl "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/webhook/handler"
)

// Register đăng ký route webhook lên v1
func Register(v1 fiber.Router) error {
	uazapiHandler, err := webhookhdl.NewUazapiWebhookHandler()
	if err != nil {
		return fmt.Errorf("create uazapi webhook handler: %w", err)
	}
	v1.Post("/uazapi/webhook", uazapiHandler.HandleMessageEvent)
	return nil
}
