// Package ws streams allocations over WebSocket as a run computes them, so
// clients can watch long backtests progress instead of polling.
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"QuantBench/internal/domain/models"
	"QuantBench/internal/usecase"
	xhttp "QuantBench/pkg/http"
	xlogger "QuantBench/pkg/logger"
)

const writeWait = 10 * time.Second

// StreamHandler upgrades /ws/backtest connections and runs one backtest per
// connection, emitting each allocation as it is produced.
type StreamHandler struct {
	logger   *xlogger.Logger
	runner   *usecase.BacktestRunner
	upgrader websocket.Upgrader
}

func NewStreamHandler(logger *xlogger.Logger, runner *usecase.BacktestRunner) *StreamHandler {
	return &StreamHandler{
		logger: logger,
		runner: runner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/backtest", h.Stream)
}

type streamFrame struct {
	Type       string                   `json:"type"` // allocation | done | error
	Allocation *models.TargetAllocation `json:"allocation,omitempty"`
	Result     *models.BacktestResult   `json:"result,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// Stream handles one connection: the client sends a BacktestRequest as the
// first message, then receives allocation frames followed by a done frame.
func (h *StreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	var req models.BacktestRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.writeFrame(conn, streamFrame{Type: "error", Error: "invalid request payload"})
		return nil
	}
	if verr := xhttp.ValidateStruct(c.Request().Context(), &req); verr != nil {
		h.writeFrame(conn, streamFrame{Type: "error", Error: "request failed validation"})
		return nil
	}

	ctx := c.Request().Context()
	result, err := h.runner.RunStream(ctx, &req, func(a models.TargetAllocation) {
		h.writeFrame(conn, streamFrame{Type: "allocation", Allocation: &a})
	})
	if err != nil {
		h.logger.Error("backtest stream error", xlogger.Error(err))
		h.writeFrame(conn, streamFrame{Type: "error", Error: err.Error()})
		return nil
	}

	// Suppress the allocation list in the final frame; it was already streamed.
	final := *result
	final.Allocations = nil
	h.writeFrame(conn, streamFrame{Type: "done", Result: &final})
	return nil
}

func (h *StreamHandler) writeFrame(conn *websocket.Conn, f streamFrame) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(f); err != nil {
		h.logger.Warn("ws write failed", xlogger.Error(err))
	}
}
