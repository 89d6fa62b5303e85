// Package router đăng ký các route admin của pipeline.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	pipelinehdl "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/pipeline/handler"
)

// Register đăng ký các route pipeline lên v1
func Register(v1 fiber.Router) error {
	pipelineHandler, err := pipelinehdl.NewPipelineHandler()
	if err != nil {
		return fmt.Errorf("create pipeline handler: %w", err)
	}
	v1.Post("/pipeline/run", pipelineHandler.HandleRun)
	v1.Get("/pipeline/stats", pipelineHandler.HandleStats)
	v1.Get("/pipeline/dead-letters", pipelineHandler.HandleDeadLetters)
	return nil
}
