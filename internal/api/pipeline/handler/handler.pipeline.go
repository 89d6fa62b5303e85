// Package pipelinehdl - các endpoint admin của delivery pipeline.
package pipelinehdl

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/base/handler"
	queuesvc "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/service"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/global"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/pipeline"
)

// PipelineHandler expose các thao tác admin: chạy run thủ công,
// đọc counters và inspect dead-letter queue.
type PipelineHandler struct {
	orchestrator *pipeline.Orchestrator
	queueStore   *queuesvc.QueueStore
}

// NewPipelineHandler tạo mới PipelineHandler
func NewPipelineHandler() (*PipelineHandler, error) {
	orchestrator, err := pipeline.BuildOrchestrator(global.ServerConfig)
	if err != nil {
		return nil, err
	}
	queueStore, err := queuesvc.NewQueueStore()
	if err != nil {
		return nil, err
	}
	return &PipelineHandler{
		orchestrator: orchestrator,
		queueStore:   queueStore,
	}, nil
}

// HandleRun trigger một orchestrator run thủ công và trả về summary.
// Scheduler vẫn chạy song song — queue store chịu được run chồng nhau
// vì mọi mutation đều atomic theo document.
func (h *PipelineHandler) HandleRun(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		summary, err := h.orchestrator.Run(c.Context())
		if err != nil {
			basehdl.Error(c, common.StatusInternalServerError, common.ErrCodePipelineRun, err.Error())
			return nil
		}
		basehdl.Success(c, summary)
		return nil
	})
}

// HandleStats trả về aggregate counters của pipeline
func (h *PipelineHandler) HandleStats(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		stats, err := h.queueStore.GetStats(c.Context())
		if err != nil {
			basehdl.Error(c, common.StatusInternalServerError, common.ErrCodeDatabaseQuery, err.Error())
			return nil
		}
		basehdl.Success(c, stats)
		return nil
	})
}

// HandleDeadLetters trả về các dead-lettered items mới nhất (mặc định 50)
func (h *PipelineHandler) HandleDeadLetters(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}
		items, err := h.queueStore.ListDeadLetters(c.Context(), limit)
		if err != nil {
			basehdl.Error(c, common.StatusInternalServerError, common.ErrCodeDatabaseQuery, err.Error())
			return nil
		}
		basehdl.Success(c, fiber.Map{"items": items, "count": len(items)})
		return nil
	})
}
