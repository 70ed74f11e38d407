package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"QuantBench/internal/domain/models"
	"QuantBench/internal/domain/repository"
	pkgch "QuantBench/pkg/clickhouse"
)

// ClickHouseEquityStore persists simulated equity points per run.
type ClickHouseEquityStore struct {
	db       *sql.DB
	database string
}

func NewClickHouseEquityStore(ch *pkgch.Client, database string) repository.EquityStore {
	return &ClickHouseEquityStore{db: ch.DB(), database: database}
}

func (s *ClickHouseEquityStore) StoreBatch(ctx context.Context, points []models.EquityPoint) error {
	if len(points) == 0 {
		return nil
	}
	// Chunked multi-row VALUES keeps round-trips bounded for long replays.
	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*3)
		for _, p := range points[start:end] {
			if p.RunID == "" || p.Date.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?)")
			args = append(args, p.RunID, p.Date, p.Return)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s.equity_points (run_id, date, return) VALUES %s",
			s.database, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store equity points: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseEquityStore) Query(ctx context.Context, runID string) ([]models.EquityPoint, error) {
	q := fmt.Sprintf(`
        SELECT run_id, date, return
        FROM %s.equity_points
        WHERE run_id = ?
        ORDER BY date ASC
    `, s.database)
	rows, err := s.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("query equity points: %w", err)
	}
	defer rows.Close()

	var out []models.EquityPoint
	for rows.Next() {
		var p models.EquityPoint
		if err := rows.Scan(&p.RunID, &p.Date, &p.Return); err != nil {
			return nil, fmt.Errorf("scan equity point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ClickHouseEquityStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseEquityStore) Close() error {
	return nil // connection pool owned by pkg client
}
