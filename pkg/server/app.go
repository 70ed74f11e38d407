package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"

	"QuantBench/internal/domain/repository"
	pkgch "QuantBench/pkg/clickhouse"
	"QuantBench/pkg/config"
	xhttp "QuantBench/pkg/http"
	pkgkafka "QuantBench/pkg/kafka"
	applogger "QuantBench/pkg/logger"
	pkgqueue "QuantBench/pkg/queue"
)

// App encapsulates the entire application lifecycle: HTTP API, the equity
// consumer, the async job queue and infrastructure clients.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	chClient   *pkgch.Client
	sink       repository.AllocationSink
	jobQueue   *pkgqueue.RedisQueue
	httpServer *xhttp.Server
	handlers   []xhttp.Handler
}

// New creates a new App instance with all dependencies. Consumer, sink and
// job queue may be nil when the corresponding infrastructure is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	sink repository.AllocationSink,
	jobQueue *pkgqueue.RedisQueue,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		consumer: consumer,
		kh:       kh,
		chClient: chClient,
		sink:     sink,
		jobQueue: jobQueue,
	}
}

// AddHTTPHandler registers a route group on the HTTP server.
func (a *App) AddHTTPHandler(h xhttp.Handler) {
	a.handlers = append(a.handlers, h)
}

type compositeHandler struct{ handlers []xhttp.Handler }

func (c compositeHandler) RegisterRoutes(e *echo.Echo) {
	for _, h := range c.handlers {
		h.RegisterRoutes(e)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(compositeHandler{handlers: a.handlers},
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	// Start job queue workers if configured
	if a.jobQueue != nil {
		if err := a.jobQueue.Start(); err != nil {
			a.log.Error("job queue start error", applogger.Error(err))
			return err
		}
		a.log.Info("job queue started", applogger.Int("workers", a.cfg.Backtest.QueueWorkers))
	}

	// Start equity consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			a.log.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.log.Warn("allocation sink close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
