package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codecollab/codecollab-server/internal/exec"
	"github.com/codecollab/codecollab-server/internal/metrics"
	"github.com/codecollab/codecollab-server/internal/store"
)

// ExecHandlers proxies code execution requests to the execution
// engine, rate limited per instance.
type ExecHandlers struct {
	exec    *exec.Client
	store   store.RoomStore
	limiter *rateLimiter
	log     *zerolog.Logger
}

// NewExecHandlers creates a new execution handlers instance.
func NewExecHandlers(execClient *exec.Client, roomStore store.RoomStore, limit int, logger *zerolog.Logger) *ExecHandlers {
	return &ExecHandlers{
		exec:    execClient,
		store:   roomStore,
		limiter: newRateLimiter(limit),
		log:     logger,
	}
}

// StartLimiter starts the rate limiter reset loop. It stops when the
// given channel closes.
func (h *ExecHandlers) StartLimiter(stop <-chan struct{}) {
	h.limiter.startReset(stop)
}

// ExecuteRequest represents the execute request body.
type ExecuteRequest struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language" binding:"required"`
	Stdin    string `json:"stdin"`
}

// ExecuteResponse represents the execute response body.
type ExecuteResponse struct {
	Success  bool   `json:"success"`
	Output   string `json:"output"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exitCode"`
}

// Execute handles code execution for a room.
// POST /api/rooms/:id/execute
func (h *ExecHandlers) Execute(c *gin.Context) {
	roomID := c.Param("id")

	exists, err := h.store.RoomExists(c.Request.Context(), roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to check room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid execute request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if !h.limiter.allow() {
		metrics.Executions.WithLabelValues("rate_limited").Inc()
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many execution requests"})
		return
	}

	result, err := h.exec.Execute(c.Request.Context(), req.Language, req.Code, req.Stdin)
	if err != nil {
		metrics.Executions.WithLabelValues("error").Inc()
		if errors.Is(err, exec.ErrExecutionFailed) {
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error().Err(err).Str("room_id", roomID).Msg("execution request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	metrics.Executions.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, ExecuteResponse{
		Success:  result.ExitCode == 0,
		Output:   result.Output,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
	})
}
