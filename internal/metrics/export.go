package metrics

import (
	"fmt"
	"io"
	"slices"
	"time"
)

// WriteReport writes a human-readable summary of the collector's stats.
func WriteReport(w io.Writer, c *Collector) error {
	stats := c.GetStats()

	lines := []string{
		"Quill Analysis Metrics",
		fmt.Sprintf("Window: %s to %s", stats.WindowStart.Format(time.RFC3339), stats.WindowEnd.Format(time.RFC3339)),
		"",
		"=== Summary ===",
		fmt.Sprintf("Total Analyses:    %d", stats.TotalAnalyses),
		fmt.Sprintf("Failed Analyses:   %d (%.1f%%)", stats.TotalFailures, safePercent(float64(stats.TotalFailures), float64(stats.TotalAnalyses))),
		fmt.Sprintf("Total Issues:      %d", stats.TotalIssues),
		fmt.Sprintf("Issues/Analysis:   %.2f", stats.IssuesPerAnalysis),
		"",
		"=== Latency ===",
		fmt.Sprintf("Average:  %.2fms", stats.AvgDurationMs),
		fmt.Sprintf("P50:      %.2fms", stats.P50DurationMs),
		fmt.Sprintf("P95:      %.2fms", stats.P95DurationMs),
		fmt.Sprintf("P99:      %.2fms", stats.P99DurationMs),
		fmt.Sprintf("Max:      %.2fms", stats.MaxDurationMs),
		"",
		"=== Cache ===",
		fmt.Sprintf("Hits:     %d", stats.CacheHits),
		fmt.Sprintf("Misses:   %d", stats.CacheMisses),
		fmt.Sprintf("Hit Rate: %.1f%%", stats.CacheHitRate*100),
	}

	if len(stats.ByLanguage) > 0 {
		lines = append(lines, "", "=== By Language ===")
		languages := make([]string, 0, len(stats.ByLanguage))
		for l := range stats.ByLanguage {
			languages = append(languages, l)
		}
		slices.Sort(languages)
		for _, l := range languages {
			ls := stats.ByLanguage[l]
			lines = append(lines, fmt.Sprintf("%-12s count=%d avg=%.2fms failures=%.1f%%",
				l, ls.Count, ls.AvgDurationMs, ls.FailureRate*100))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func safePercent(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return (numerator / denominator) * 100
}
