package metrics

import (
	"sync"
	"time"
)

// Store is a thread-safe in-memory aggregate of generation activity. It
// keeps running totals plus a ring of the most recent records.
type Store struct {
	mu sync.RWMutex

	recent     []GenerationRecord
	recentCap  int
	recentHead int
	recentSize int

	totalRequests int64
	totalSuccess  int64
	totalErrors   int64
	byMode        map[string]*modeStats

	lastRequest time.Time
	startTime   time.Time
}

type modeStats struct {
	count         int64
	successCount  int64
	totalDuration time.Duration
}

// DefaultRecentCapacity is the number of recent records retained.
const DefaultRecentCapacity = 100

// NewStore creates a Store. recentCap bounds the recent-record ring; values
// below 1 take the default.
func NewStore(recentCap int) *Store {
	if recentCap < 1 {
		recentCap = DefaultRecentCapacity
	}
	return &Store{
		recent:    make([]GenerationRecord, recentCap),
		recentCap: recentCap,
		byMode:    make(map[string]*modeStats),
		startTime: time.Now(),
	}
}

// Record adds one generation record to the aggregates.
func (s *Store) Record(rec GenerationRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent[s.recentHead] = rec
	s.recentHead = (s.recentHead + 1) % s.recentCap
	if s.recentSize < s.recentCap {
		s.recentSize++
	}

	s.totalRequests++
	if rec.Success {
		s.totalSuccess++
	} else {
		s.totalErrors++
	}

	stats := s.byMode[rec.Mode]
	if stats == nil {
		stats = &modeStats{}
		s.byMode[rec.Mode] = stats
	}
	stats.count++
	if rec.Success {
		stats.successCount++
	}
	stats.totalDuration += rec.Duration

	if rec.Timestamp.After(s.lastRequest) {
		s.lastRequest = rec.Timestamp
	}
}

// Snapshot returns the current aggregates.
func (s *Store) Snapshot() GenerationMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byMode := make(map[string]ModeMetrics, len(s.byMode))
	for mode, stats := range s.byMode {
		m := ModeMetrics{
			Count:        stats.count,
			SuccessCount: stats.successCount,
			ErrorCount:   stats.count - stats.successCount,
		}
		if stats.count > 0 {
			m.AvgDurationSec = stats.totalDuration.Seconds() / float64(stats.count)
		}
		byMode[mode] = m
	}

	snap := GenerationMetrics{
		TotalRequests: s.totalRequests,
		TotalSuccess:  s.totalSuccess,
		TotalErrors:   s.totalErrors,
		ByMode:        byMode,
		UptimeSecs:    time.Since(s.startTime).Seconds(),
	}
	if !s.lastRequest.IsZero() {
		last := s.lastRequest
		snap.LastRequest = &last
	}
	return snap
}

// Recent returns up to limit of the most recent records, newest first. A
// limit below 1 returns everything retained.
func (s *Store) Recent(limit int) []GenerationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 || limit > s.recentSize {
		limit = s.recentSize
	}

	out := make([]GenerationRecord, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (s.recentHead - 1 - i + s.recentCap) % s.recentCap
		out = append(out, s.recent[idx])
	}
	return out
}
