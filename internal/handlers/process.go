package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mgesteban/boardbreeze-splitter/internal/pipeline"
	"github.com/mgesteban/boardbreeze-splitter/internal/probe"
	"github.com/mgesteban/boardbreeze-splitter/internal/types"
)

// ProcessRequest is the invocation trigger payload
type ProcessRequest struct {
	SourceBucket string `json:"source_bucket"`
	SourceKey    string `json:"source_key"`
}

// ProcessHandler runs the splitting pipeline for one recording
type ProcessHandler struct {
	pipeline *pipeline.Pipeline
	timeout  time.Duration // 0 = no deadline
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(p *pipeline.Pipeline, timeout time.Duration) *ProcessHandler {
	return &ProcessHandler{
		pipeline: p,
		timeout:  timeout,
	}
}

// Handle processes the split request synchronously and returns the pipeline
// result. The response is always structured: 200 for no-split and complete,
// 422 when the pipeline reports failure, 400 for a bad request.
func (h *ProcessHandler) Handle(c *fiber.Ctx) error {
	var req ProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_BAD_REQUEST",
		})
	}

	if req.SourceBucket == "" || req.SourceKey == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "source_bucket and source_key are required",
			"code":  "ERR_MISSING_SOURCE",
		})
	}

	if !probe.ValidFormat(req.SourceKey) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported audio format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	log.Printf("Processing %s/%s", req.SourceBucket, req.SourceKey)
	result := h.pipeline.Run(ctx, types.SourceFile{
		Bucket: req.SourceBucket,
		Key:    req.SourceKey,
	})

	if result.Status == types.StatusFailed {
		return c.Status(422).JSON(result)
	}
	return c.JSON(result)
}
