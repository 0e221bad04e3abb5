package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

type ForecastRepository struct {
	db *sqlx.DB
}

func NewForecastRepository(db *sqlx.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// Between returns forecast rows with ts in [from, to], oldest first.
func (r *ForecastRepository) Between(ctx context.Context, from, to time.Time) ([]models.ForecastPoint, error) {
	query := `
		SELECT id, ts, y_pred, model_version
		FROM traffic.forecast_1h
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts ASC, id ASC`

	var points []models.ForecastPoint
	if err := r.db.SelectContext(ctx, &points, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to get forecasts: %w", err)
	}
	return points, nil
}

// LastPositiveBefore returns the newest strictly positive prediction made
// before t, or nil when there is none.
func (r *ForecastRepository) LastPositiveBefore(ctx context.Context, t time.Time) (*models.ForecastPoint, error) {
	query := `
		SELECT id, ts, y_pred, model_version
		FROM traffic.forecast_1h
		WHERE ts < $1 AND y_pred > 0
		ORDER BY ts DESC, id DESC
		LIMIT 1`

	var p models.ForecastPoint
	if err := r.db.GetContext(ctx, &p, query, t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get carry forecast: %w", err)
	}
	return &p, nil
}
