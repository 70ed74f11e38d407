package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"QuantBench/internal/domain/models"
	domrepo "QuantBench/internal/domain/repository"
	"QuantBench/internal/engine/factor"
	"QuantBench/internal/services/analytics"
	"QuantBench/internal/usecase"
	xhttp "QuantBench/pkg/http"
	xlogger "QuantBench/pkg/logger"
	"QuantBench/pkg/queue"
	"QuantBench/pkg/util"
)

// periods per year used to annualize daily equity points
const tradingDaysPerYear = 252

// BacktestEchoHandler exposes backtest runs and run analytics over HTTP.
type BacktestEchoHandler struct {
	logger   *xlogger.Logger
	runner   *usecase.BacktestRunner
	registry *factor.Registry
	equity   domrepo.EquityStore
	queue    queue.QueueService
}

func NewBacktestEchoHandler(
	logger *xlogger.Logger,
	runner *usecase.BacktestRunner,
	registry *factor.Registry,
	equity domrepo.EquityStore,
	q queue.QueueService,
) *BacktestEchoHandler {
	return &BacktestEchoHandler{logger: logger, runner: runner, registry: registry, equity: equity, queue: q}
}

func (h *BacktestEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/backtest", h.Run)
	g.POST("/backtest/async", h.Enqueue)
	g.GET("/backtest/:key", h.Result)
	g.GET("/runs/:id/equity", h.Equity)
	g.GET("/runs/:id/performance", h.Performance)
	g.GET("/factors", h.Factors)
	g.GET("/markets", h.Markets)
	e.GET("/healthz", h.Health)
}

// Run executes a backtest synchronously and returns the full result.
func (h *BacktestEchoHandler) Run(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.runner.Run(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("backtest run error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Enqueue schedules a backtest on the job queue and returns immediately.
func (h *BacktestEchoHandler) Enqueue(c echo.Context) error {
	if h.queue == nil {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, "job queue is not configured")
	}
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.queue.PublishMessage(c.Request().Context(), usecase.BacktestJobType, req); err != nil {
		h.logger.Error("backtest enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, map[string]string{
		"status": "queued",
		"key":    usecase.RequestKey(req),
	})
}

// Result returns the cached result for a request key, once the queued run
// has finished.
func (h *BacktestEchoHandler) Result(c echo.Context) error {
	res, ok := h.runner.Cached(c.Request().Context(), c.Param("key"))
	if !ok {
		return xhttp.NotFoundResponse(c, "no completed run for key")
	}
	return xhttp.SuccessResponse(c, res)
}

// Equity returns the raw equity points reported by the execution simulator.
func (h *BacktestEchoHandler) Equity(c echo.Context) error {
	runID := c.Param("id")
	points, err := h.equity.Query(c.Request().Context(), runID)
	if err != nil {
		h.logger.Error("equity query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if len(points) == 0 {
		return xhttp.NotFoundResponse(c, "no equity points for run")
	}
	return xhttp.ListResponse(c, points, int64(len(points)))
}

// Performance summarizes a run's simulated performance. The annualization
// basis defaults to daily sessions and can be overridden with ?periods=.
func (h *BacktestEchoHandler) Performance(c echo.Context) error {
	runID := c.Param("id")
	points, err := h.equity.Query(c.Request().Context(), runID)
	if err != nil {
		h.logger.Error("equity query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if len(points) == 0 {
		return xhttp.NotFoundResponse(c, "no equity points for run")
	}
	periods := util.ParseIntDefault(c.QueryParam("periods"), tradingDaysPerYear)
	return xhttp.SuccessResponse(c, analytics.Summarize(runID, points, float64(periods)))
}

// Factors lists the registered factor names.
func (h *BacktestEchoHandler) Factors(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.registry.Available())
}

// Markets lists supported market codes with their trading profiles.
func (h *BacktestEchoHandler) Markets(c echo.Context) error {
	codes := models.MarketCodes()
	out := make(map[string]models.MarketProfile, len(codes))
	for _, code := range codes {
		p, err := models.ProfileFor(code)
		if err != nil {
			continue
		}
		out[code] = p
	}
	return xhttp.SuccessResponse(c, out)
}

// Health reports readiness of the equity store dependency.
func (h *BacktestEchoHandler) Health(c echo.Context) error {
	if err := h.equity.Health(c.Request().Context()); err != nil {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, err.Error())
	}
	return xhttp.SuccessResponse(c, "ok")
}
