// Package metrics records per-analysis events in memory and mirrors them
// to OpenTelemetry instruments.
package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// CacheResult indicates whether a report came from the cache.
type CacheResult string

const (
	CacheHit      CacheResult = "hit"
	CacheMiss     CacheResult = "miss"
	CacheDisabled CacheResult = "disabled"
)

// AnalysisEvent captures one analysis call.
type AnalysisEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language"`

	SourceSize int `json:"source_size"` // bytes
	LineCount  int `json:"line_count"`

	Duration time.Duration `json:"duration"`

	IssueCount int `json:"issue_count"`
	ErrorCount int `json:"error_count"` // issues with severity error

	CacheResult CacheResult `json:"cache_result"`

	Error string `json:"error,omitempty"`
}

// AggregateStats holds computed aggregate statistics
type AggregateStats struct {
	TotalAnalyses int64 `json:"total_analyses"`
	TotalFailures int64 `json:"total_failures"`
	TotalIssues   int64 `json:"total_issues"`

	// Latency stats (in milliseconds for JSON readability)
	AvgDurationMs float64 `json:"avg_duration_ms"`
	P50DurationMs float64 `json:"p50_duration_ms"`
	P95DurationMs float64 `json:"p95_duration_ms"`
	P99DurationMs float64 `json:"p99_duration_ms"`
	MaxDurationMs float64 `json:"max_duration_ms"`

	CacheHits    int64   `json:"cache_hits"`
	CacheMisses  int64   `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"`

	AnalysesPerMinute float64 `json:"analyses_per_minute"`
	IssuesPerAnalysis float64 `json:"issues_per_analysis"`

	ByLanguage map[string]*LanguageStats `json:"by_language"`

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// LanguageStats holds stats for one language
type LanguageStats struct {
	Count         int64   `json:"count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	FailureRate   float64 `json:"failure_rate"`
}

type atomicCounters struct {
	totalAnalyses atomic.Int64
	totalFailures atomic.Int64
	totalIssues   atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
}

// Collector collects and stores analysis events
type Collector struct {
	mu       sync.RWMutex
	events   []AnalysisEvent
	counters atomicCounters

	maxEvents  int
	windowSize time.Duration
	startTime  time.Time
	now        func() time.Time
}

// CollectorOption configures a Collector
type CollectorOption func(*Collector)

// WithMaxEvents sets the maximum number of events to retain
func WithMaxEvents(n int) CollectorOption {
	return func(c *Collector) {
		c.maxEvents = n
	}
}

// WithWindowSize sets the time window for aggregate stats
func WithWindowSize(d time.Duration) CollectorOption {
	return func(c *Collector) {
		c.windowSize = d
	}
}

// NewCollector creates a new metrics collector
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		maxEvents:  10000,
		windowSize: time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.startTime = c.now()
	return c
}

// Record adds an analysis event to the collector
func (c *Collector) Record(event AnalysisEvent) {
	c.counters.totalAnalyses.Add(1)
	c.counters.totalIssues.Add(int64(event.IssueCount))
	if event.Error != "" {
		c.counters.totalFailures.Add(1)
	}
	switch event.CacheResult {
	case CacheHit:
		c.counters.cacheHits.Add(1)
	case CacheMiss:
		c.counters.cacheMisses.Add(1)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEvents <= 0 {
		return
	}
	c.events = append(c.events, event)
	if len(c.events) > c.maxEvents {
		// drop the oldest tenth
		prune := max(c.maxEvents/10, 1)
		c.events = slices.Clone(c.events[prune:])
	}
}

// GetStats computes aggregate statistics from collected events
func (c *Collector) GetStats() AggregateStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	windowStart := now.Add(-c.windowSize)

	stats := AggregateStats{
		TotalAnalyses: c.counters.totalAnalyses.Load(),
		TotalFailures: c.counters.totalFailures.Load(),
		TotalIssues:   c.counters.totalIssues.Load(),
		CacheHits:     c.counters.cacheHits.Load(),
		CacheMisses:   c.counters.cacheMisses.Load(),
		ByLanguage:    make(map[string]*LanguageStats),
		WindowStart:   windowStart,
		WindowEnd:     now,
	}

	if lookups := stats.CacheHits + stats.CacheMisses; lookups > 0 {
		stats.CacheHitRate = float64(stats.CacheHits) / float64(lookups)
	}
	if stats.TotalAnalyses > 0 {
		stats.IssuesPerAnalysis = float64(stats.TotalIssues) / float64(stats.TotalAnalyses)
	}
	if elapsed := now.Sub(c.startTime).Minutes(); elapsed > 0 {
		stats.AnalysesPerMinute = float64(stats.TotalAnalyses) / elapsed
	}

	var durations []float64
	var sum float64
	langCounts := make(map[string]int64)
	langDurations := make(map[string]float64)
	langFailures := make(map[string]int64)
	for _, e := range c.events {
		if !e.Timestamp.After(windowStart) {
			continue
		}
		ms := float64(e.Duration) / float64(time.Millisecond)
		durations = append(durations, ms)
		sum += ms

		langCounts[e.Language]++
		langDurations[e.Language] += ms
		if e.Error != "" {
			langFailures[e.Language]++
		}
	}
	if len(durations) == 0 {
		return stats
	}

	slices.Sort(durations)
	stats.AvgDurationMs = sum / float64(len(durations))
	stats.P50DurationMs = percentile(durations, 0.50)
	stats.P95DurationMs = percentile(durations, 0.95)
	stats.P99DurationMs = percentile(durations, 0.99)
	stats.MaxDurationMs = durations[len(durations)-1]

	for language, count := range langCounts {
		stats.ByLanguage[language] = &LanguageStats{
			Count:         count,
			AvgDurationMs: langDurations[language] / float64(count),
			FailureRate:   float64(langFailures[language]) / float64(count),
		}
	}
	return stats
}

// GetRecentEvents returns the most recent n events, oldest first.
func (c *Collector) GetRecentEvents(n int) []AnalysisEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n = min(n, len(c.events))
	if n <= 0 {
		return nil
	}
	return slices.Clone(c.events[len(c.events)-n:])
}

// Reset clears all collected metrics
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = nil
	c.counters.totalAnalyses.Store(0)
	c.counters.totalFailures.Store(0)
	c.counters.totalIssues.Store(0)
	c.counters.cacheHits.Store(0)
	c.counters.cacheMisses.Store(0)
	c.startTime = c.now()
}

// percentile returns the value at p (0.0-1.0) of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
