// Package metrics provides in-memory counters for generation activity.
package metrics

import "time"

// GenerationRecord describes one completed (or failed) generation request.
type GenerationRecord struct {
	// Mode is the generation path: "txt2img", "img2img", or "upscale".
	Mode string `json:"mode"`

	// Success is false when the engine returned an error.
	Success bool `json:"success"`

	// Duration is the wall time of the engine call.
	Duration time.Duration `json:"duration"`

	// Timestamp is when the request completed.
	Timestamp time.Time `json:"timestamp"`
}

// ModeMetrics aggregates the requests of one generation mode.
type ModeMetrics struct {
	Count          int64   `json:"count"`
	SuccessCount   int64   `json:"success_count"`
	ErrorCount     int64   `json:"error_count"`
	AvgDurationSec float64 `json:"avg_duration_sec"`
}

// GenerationMetrics is a point-in-time snapshot of all counters.
type GenerationMetrics struct {
	TotalRequests int64                  `json:"total_requests"`
	TotalSuccess  int64                  `json:"total_success"`
	TotalErrors   int64                  `json:"total_errors"`
	ByMode        map[string]ModeMetrics `json:"by_mode"`
	LastRequest   *time.Time             `json:"last_request,omitempty"`
	UptimeSecs    float64                `json:"uptime_secs"`
}
