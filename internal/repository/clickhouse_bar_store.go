package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"QuantBench/internal/domain/models"
	pkgch "QuantBench/pkg/clickhouse"
	applogger "QuantBench/pkg/logger"
)

// ClickHouseBarStore implements BarStore backed by ClickHouse daily-bar,
// financial and macro tables.
type ClickHouseBarStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewClickHouseBarStore(ch *pkgch.Client, database string) *ClickHouseBarStore {
	return &ClickHouseBarStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *ClickHouseBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ClickHouseBarStore) GetBars(ctx context.Context, market string, from, to time.Time) ([]models.DailyBar, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT symbol, trade_date, open, high, low, close, volume, amount, float_mv, adj_factor
        FROM %s.daily_bars
        WHERE market = ? AND trade_date >= ? AND trade_date <= ?
        ORDER BY trade_date ASC, symbol ASC
    `, s.database)
	rows, err := s.db.QueryContext(ctx, q, market, from, to)
	if err != nil {
		s.logErr("clickhouse get_bars query error", market, err)
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.DailyBar, 0, 4096)
	for rows.Next() {
		var b models.DailyBar
		if err := rows.Scan(&b.Symbol, &b.TradeDate, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Amount, &b.FloatMV, &b.AdjFactor); err != nil {
			s.logErr("clickhouse get_bars scan error", market, err)
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		s.logErr("clickhouse get_bars rows error", market, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_bars ok",
			applogger.String("market", market),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *ClickHouseBarStore) GetFinancials(ctx context.Context, market string, until time.Time) ([]models.FinancialRecord, error) {
	q := fmt.Sprintf(`
        SELECT symbol, report_date, fiscal_period, field, value, currency
        FROM %s.financials
        WHERE market = ? AND report_date <= ?
        ORDER BY report_date ASC
    `, s.database)
	rows, err := s.db.QueryContext(ctx, q, market, until)
	if err != nil {
		return nil, fmt.Errorf("get financials: %w", err)
	}
	defer rows.Close()

	var out []models.FinancialRecord
	for rows.Next() {
		var r models.FinancialRecord
		if err := rows.Scan(&r.Symbol, &r.ReportDate, &r.FiscalPeriod, &r.Field, &r.Value, &r.Currency); err != nil {
			return nil, fmt.Errorf("scan financial: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseBarStore) GetMacro(ctx context.Context, region string, until time.Time) ([]models.MacroRecord, error) {
	q := fmt.Sprintf(`
        SELECT indicator, release_time, value, region
        FROM %s.macro
        WHERE region = ? AND release_time <= ?
        ORDER BY release_time ASC
    `, s.database)
	rows, err := s.db.QueryContext(ctx, q, region, until)
	if err != nil {
		return nil, fmt.Errorf("get macro: %w", err)
	}
	defer rows.Close()

	var out []models.MacroRecord
	for rows.Next() {
		var r models.MacroRecord
		if err := rows.Scan(&r.Indicator, &r.ReleaseTime, &r.Value, &r.Region); err != nil {
			return nil, fmt.Errorf("scan macro: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseBarStore) Close() error {
	return nil // connection pool owned by pkg client
}

func (s *ClickHouseBarStore) logErr(msg, market string, err error) {
	if s.l != nil {
		s.l.Error(msg, applogger.String("market", market), applogger.Error(err))
	}
}
