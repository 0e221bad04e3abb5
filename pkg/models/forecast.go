package models

import "time"

// ForecastPoint is one row written by the external forecasting process.
type ForecastPoint struct {
	ID           int64     `db:"id" json:"id"`
	TS           time.Time `db:"ts" json:"ts"`
	YPred        float64   `db:"y_pred" json:"y_pred"`
	ModelVersion *string   `db:"model_version" json:"model_version,omitempty"`
}

// SystemEvent is an automation action logged by the closed-loop controller.
type SystemEvent struct {
	ID           int64     `db:"id" json:"id"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
	EventType    string    `db:"event_type" json:"event_type"`
	Description  string    `db:"description" json:"description"`
	TriggerValue *float64  `db:"trigger_value" json:"trigger_value"`
}

// RerouteLag pairs a reroute event with the latest forecast row created at or
// before it. ForecastTS is nil when no forecast precedes the event.
type RerouteLag struct {
	EventID    int64      `db:"event_id"`
	EventTS    time.Time  `db:"event_ts"`
	ForecastTS *time.Time `db:"forecast_ts"`
}

// LagMs returns the event-to-forecast distance in milliseconds.
func (l RerouteLag) LagMs() (float64, bool) {
	if l.ForecastTS == nil {
		return 0, false
	}
	return float64(l.EventTS.Sub(*l.ForecastTS).Milliseconds()), true
}

type Status string

const (
	StatusNormal   Status = "NORMAL"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL (REROUTE)"
)

// ChartRecord is one time bucket of the forecast chart.
type ChartRecord struct {
	ID              int      `json:"id"`
	RunTime         string   `json:"run_time"`
	ActualMbps      float64  `json:"actual_mbps"`
	PredictedMbps   *float64 `json:"predicted_mbps"`
	DelayMs         float64  `json:"delay_ms"`
	JitterMs        float64  `json:"jitter_ms"`
	PacketLoss      float64  `json:"packet_loss"`
	Status          Status   `json:"status"`
	Mape            *float64 `json:"mape"`
	DetectionTime   *float64 `json:"detection_time"`
	ConvergenceTime float64  `json:"convergence_time"`
}

type SystemMetrics struct {
	MTTD         float64 `json:"mttd"`
	MTTR         float64 `json:"mttr"`
	RerouteCount int     `json:"reroute_count"`
}

type ModelMetrics struct {
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
}

// ForecastView is the body of GET /api/forecast/data.
type ForecastView struct {
	Data          []ChartRecord `json:"data"`
	SystemEvents  []SystemEvent `json:"system_events"`
	LatestStatus  *ChartRecord  `json:"latest_status"`
	SystemMetrics SystemMetrics `json:"system_metrics"`
	ModelMetrics  ModelMetrics  `json:"model_metrics"`
}

// IntentRequest is the optional body of the intent endpoints.
type IntentRequest struct {
	Action string `json:"action" binding:"omitempty,oneof=REROUTE REVERT"`
	Target string `json:"target" binding:"omitempty,max=128"`
	Reason string `json:"reason" binding:"omitempty,max=512"`
}

type IntentResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
