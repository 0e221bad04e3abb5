package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

type SystemEventRepository struct {
	db *sqlx.DB
}

func NewSystemEventRepository(db *sqlx.DB) *SystemEventRepository {
	return &SystemEventRepository{db: db}
}

// Between returns events in [from, to], newest first.
func (r *SystemEventRepository) Between(ctx context.Context, from, to time.Time, limit int) ([]models.SystemEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, timestamp, event_type, description, trigger_value
		FROM traffic.system_events
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp DESC, id DESC
		LIMIT $3`

	var events []models.SystemEvent
	if err := r.db.SelectContext(ctx, &events, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("failed to get system events: %w", err)
	}
	return events, nil
}

// RerouteLags pairs every event of eventType in [from, to] with the newest
// forecast row created at or before it. Events without such a row come back
// with a NULL forecast_ts.
func (r *SystemEventRepository) RerouteLags(ctx context.Context, eventType string, from, to time.Time) ([]models.RerouteLag, error) {
	query := `
		SELECT e.id AS event_id, e.timestamp AS event_ts, f.ts AS forecast_ts
		FROM traffic.system_events e
		LEFT JOIN LATERAL (
			SELECT ts
			FROM traffic.forecast_1h
			WHERE ts <= e.timestamp
			ORDER BY ts DESC
			LIMIT 1
		) f ON TRUE
		WHERE e.event_type = $1 AND e.timestamp >= $2 AND e.timestamp <= $3
		ORDER BY e.timestamp ASC, e.id ASC`

	var lags []models.RerouteLag
	if err := r.db.SelectContext(ctx, &lags, query, eventType, from, to); err != nil {
		return nil, fmt.Errorf("failed to get reroute lags: %w", err)
	}
	return lags, nil
}
