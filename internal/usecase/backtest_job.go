package usecase

import (
	"context"

	"QuantBench/internal/domain/models"
	applogger "QuantBench/pkg/logger"
	"QuantBench/pkg/queue"
)

// BacktestJobType is the queue message type for asynchronous runs.
const BacktestJobType = "backtest.run"

// BacktestJob executes queued backtest requests. Results land in the run
// cache under the request key, where the API picks them up.
type BacktestJob struct {
	runner *BacktestRunner
	log    *applogger.Logger
}

func NewBacktestJob(runner *BacktestRunner, log *applogger.Logger) *BacktestJob {
	return &BacktestJob{runner: runner, log: log}
}

func (j *BacktestJob) Name() string { return "backtest-runner" }

func (j *BacktestJob) Type() string { return BacktestJobType }

func (j *BacktestJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.BacktestRequest](payload)
	if err != nil {
		return err
	}
	result, err := j.runner.Run(ctx, req)
	if err != nil {
		return err
	}
	j.log.Info("queued backtest complete",
		applogger.String("run_id", result.RunID),
		applogger.String("market", result.Market),
		applogger.Int("allocations", len(result.Allocations)),
	)
	return nil
}

var _ queue.Job = (*BacktestJob)(nil)
