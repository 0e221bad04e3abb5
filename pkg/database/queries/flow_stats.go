package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

// categorised restricts rows to flows the classifier has labelled.
const categorised = `category IS NOT NULL AND category <> 'unknown'`

type FlowStatsRepository struct {
	db *sqlx.DB
}

func NewFlowStatsRepository(db *sqlx.DB) *FlowStatsRepository {
	return &FlowStatsRepository{db: db}
}

// LatestTimestamp returns the newest sample time, or nil for an empty table.
func (r *FlowStatsRepository) LatestTimestamp(ctx context.Context) (*time.Time, error) {
	var ts sql.NullTime
	if err := r.db.GetContext(ctx, &ts, `SELECT MAX(timestamp) FROM traffic.flow_stats`); err != nil {
		return nil, fmt.Errorf("failed to get latest flow timestamp: %w", err)
	}
	if !ts.Valid {
		return nil, nil
	}
	return &ts.Time, nil
}

// LatestTimestamps returns up to n distinct sample times, newest first.
func (r *FlowStatsRepository) LatestTimestamps(ctx context.Context, n int) ([]time.Time, error) {
	query := `
		SELECT DISTINCT timestamp
		FROM traffic.flow_stats
		ORDER BY timestamp DESC
		LIMIT $1`

	var stamps []time.Time
	if err := r.db.SelectContext(ctx, &stamps, query, n); err != nil {
		return nil, fmt.Errorf("failed to get latest flow timestamps: %w", err)
	}
	return stamps, nil
}

// CategoriesAt aggregates every categorised flow sampled at ts.
func (r *FlowStatsRepository) CategoriesAt(ctx context.Context, ts time.Time) ([]models.CategorySnapshot, error) {
	query := `
		SELECT category,
			COALESCE(SUM(bytes_tx), 0)   AS total_bytes_tx,
			COALESCE(SUM(pkts_tx), 0)    AS total_pkts_tx,
			COALESCE(AVG(latency_ms), 0) AS avg_latency,
			COUNT(id)                    AS active_flows
		FROM traffic.flow_stats
		WHERE timestamp = $1 AND ` + categorised + `
		GROUP BY category
		ORDER BY category`

	var rows []models.CategorySnapshot
	if err := r.db.SelectContext(ctx, &rows, query, ts); err != nil {
		return nil, fmt.Errorf("failed to aggregate categories at %s: %w", ts.Format(time.RFC3339), err)
	}
	return rows, nil
}

// Categories lists the distinct categorised labels.
func (r *FlowStatsRepository) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM traffic.flow_stats
		WHERE ` + categorised + `
		ORDER BY category`

	var categories []string
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// TotalsBetween aggregates categorised flows per sample time in [from, to],
// oldest first.
func (r *FlowStatsRepository) TotalsBetween(ctx context.Context, from, to time.Time) ([]models.TotalsSnapshot, error) {
	query := `
		SELECT timestamp,
			COALESCE(SUM(bytes_tx), 0)   AS total_bytes_tx,
			COALESCE(SUM(pkts_tx), 0)    AS total_pkts_tx,
			COALESCE(SUM(pkts_lost), 0)  AS total_pkts_lost,
			COALESCE(AVG(latency_ms), 0) AS avg_latency,
			COUNT(id)                    AS active_flows
		FROM traffic.flow_stats
		WHERE timestamp >= $1 AND timestamp <= $2 AND ` + categorised + `
		GROUP BY timestamp
		ORDER BY timestamp ASC`

	var rows []models.TotalsSnapshot
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to aggregate flow totals: %w", err)
	}
	return rows, nil
}

// Raw returns the newest limit rows, oldest first.
func (r *FlowStatsRepository) Raw(ctx context.Context, limit int) ([]models.RawFlowPoint, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT timestamp, bytes_tx FROM (
			SELECT timestamp, bytes_tx, id
			FROM traffic.flow_stats
			ORDER BY timestamp DESC, id DESC
			LIMIT $1
		) latest
		ORDER BY timestamp ASC, id ASC`

	var rows []models.RawFlowPoint
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list raw flow stats: %w", err)
	}
	return rows, nil
}
