package models

import "time"

// UnknownCategory marks flows the classifier could not label; they are
// excluded from every aggregate.
const UnknownCategory = "unknown"

// CategorySnapshot aggregates all flows of one category at one timestamp.
type CategorySnapshot struct {
	Category     string  `db:"category"`
	TotalBytesTx float64 `db:"total_bytes_tx"`
	TotalPktsTx  float64 `db:"total_pkts_tx"`
	AvgLatencyMs float64 `db:"avg_latency"`
	ActiveFlows  int     `db:"active_flows"`
}

// TotalsSnapshot aggregates every categorised flow at one timestamp. It feeds
// the "actual" series of the forecast chart.
type TotalsSnapshot struct {
	Timestamp     time.Time `db:"timestamp"`
	TotalBytesTx  float64   `db:"total_bytes_tx"`
	TotalPktsTx   float64   `db:"total_pkts_tx"`
	TotalPktsLost float64   `db:"total_pkts_lost"`
	AvgLatencyMs  float64   `db:"avg_latency"`
	ActiveFlows   int       `db:"active_flows"`
}

// CategoryStats is one element of the stats-by-category response. Nil metric
// fields mean "no data yet" and must stay distinct from zero traffic.
type CategoryStats struct {
	Timestamp     time.Time `json:"timestamp"`
	Category      string    `json:"category"`
	ThroughputBps *float64  `json:"throughput_bps"`
	PpsTx         *float64  `json:"pps_tx"`
	AvgLatencyMs  *float64  `json:"avg_latency_ms"`
	AvgJitterMs   *float64  `json:"avg_jitter_ms"`
	ActiveFlows   *int      `json:"active_flows"`
}

// RawFlowPoint is the reduced row served by the /flowstats listing.
type RawFlowPoint struct {
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	BytesTx   int64     `db:"bytes_tx" json:"bytes_tx"`
}

// FilterOptions lists the categories a dashboard can filter by.
type FilterOptions struct {
	Categories []string `json:"categories"`
}
