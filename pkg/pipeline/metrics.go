// pkg/pipeline/metrics.go
package pipeline

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RunMetrics tracks timings and volumes for a cleaning run
type RunMetrics struct {
	mu                sync.Mutex
	logger            *zap.Logger
	StartTime         time.Time
	EndTime           time.Time
	StageDurations    map[string]time.Duration
	stageStarts       map[string]time.Time
	RowsRead          int
	RowsWritten       int
	RowsDroppedByDate int
	CleaningOps       int
	MissingByColumn   map[string]int
	PeakMemoryUsage   int64
	ErrorCounts       map[ErrorCategory]int
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunMetrics{
		logger:          logger,
		StartTime:       time.Now(),
		StageDurations:  make(map[string]time.Duration),
		stageStarts:     make(map[string]time.Time),
		MissingByColumn: make(map[string]int),
		ErrorCounts:     make(map[ErrorCategory]int),
	}
}

// StartStage begins timing a stage
func (m *RunMetrics) StartStage(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stageStarts[stage] = time.Now()
	m.logger.Debug("Started stage", zap.String("stage", stage))
}

// EndStage stops timing a stage and samples memory use
func (m *RunMetrics) EndStage(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start, ok := m.stageStarts[stage]
	if !ok {
		return
	}
	m.StageDurations[stage] = time.Since(start)
	delete(m.stageStarts, stage)
	m.recordMemoryUsage()

	m.logger.Debug("Completed stage",
		zap.String("stage", stage),
		zap.Duration("duration", m.StageDurations[stage]))
}

// recordMemoryUsage keeps the peak heap size seen at stage boundaries
func (m *RunMetrics) recordMemoryUsage() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	if heap := int64(stats.HeapAlloc); heap > m.PeakMemoryUsage {
		m.PeakMemoryUsage = heap
	}
}

// RecordResult copies the volumes of a finished run
func (m *RunMetrics) RecordResult(result *RunResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RowsRead = result.RowsIn
	m.RowsWritten = result.RowsOut
	m.RowsDroppedByDate = result.RowsDroppedByDate
	m.CleaningOps = result.Operations
	for col, n := range result.MissingByColumn {
		m.MissingByColumn[col] = n
	}
}

// RecordError counts an error by category
func (m *RunMetrics) RecordError(category ErrorCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCounts[category]++
}

// Complete marks the end of the run
func (m *RunMetrics) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EndTime = time.Now()
}

// Duration returns the total run duration
func (m *RunMetrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// CalculateThroughput returns source rows cleaned per second
func (m *RunMetrics) CalculateThroughput() float64 {
	seconds := m.Duration().Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(m.RowsRead) / seconds
}

// formatBytes converts bytes to a human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// GenerateMetricsReport creates a plain text summary of the run
func (m *RunMetrics) GenerateMetricsReport() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`
Cleaning Metrics Report
=======================
Duration:                %s
Rows Read:               %d
Rows Written:            %d
Rows Dropped By Date:    %d (%.1f%%)
Cleaning Operations:     %d
Average Throughput:      %.2f rows/sec
Peak Memory Usage:       %s
`,
		formatDuration(m.Duration()),
		m.RowsRead,
		m.RowsWritten,
		m.RowsDroppedByDate, getPercentage(float64(m.RowsDroppedByDate), float64(m.RowsRead)),
		m.CleaningOps,
		m.CalculateThroughput(),
		formatBytes(m.PeakMemoryUsage),
	))

	if len(m.StageDurations) > 0 {
		sb.WriteString("\nStages\n------\n")
		for _, stage := range []string{StageLoad, StageTransform, StageWrite, StageRecord} {
			if d, ok := m.StageDurations[stage]; ok {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", stage, formatDuration(d)))
			}
		}
	}

	if len(m.MissingByColumn) > 0 {
		sb.WriteString("\nMissing Values\n--------------\n")
		columns := make([]string, 0, len(m.MissingByColumn))
		for col := range m.MissingByColumn {
			columns = append(columns, col)
		}
		sort.Strings(columns)
		for _, col := range columns {
			n := m.MissingByColumn[col]
			sb.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", col, n, getPercentage(float64(n), float64(m.RowsWritten))))
		}
	}

	if len(m.ErrorCounts) > 0 {
		sb.WriteString("\nErrors\n------\n")
		for category, count := range m.ErrorCounts {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", category, count))
		}
	}

	return sb.String()
}

// getPercentage safely calculates a percentage, avoiding division by zero
func getPercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}

// ToJSON serializes metrics to JSON
func (m *RunMetrics) ToJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stages := make(map[string]string, len(m.StageDurations))
	for stage, d := range m.StageDurations {
		stages[stage] = formatDuration(d)
	}

	return json.Marshal(struct {
		Duration          string            `json:"duration"`
		RowsRead          int               `json:"rowsRead"`
		RowsWritten       int               `json:"rowsWritten"`
		RowsDroppedByDate int               `json:"rowsDroppedByDate"`
		CleaningOps       int               `json:"cleaningOps"`
		MissingByColumn   map[string]int    `json:"missingByColumn"`
		Stages            map[string]string `json:"stages"`
		Throughput        float64           `json:"throughput"`
	}{
		Duration:          formatDuration(m.Duration()),
		RowsRead:          m.RowsRead,
		RowsWritten:       m.RowsWritten,
		RowsDroppedByDate: m.RowsDroppedByDate,
		CleaningOps:       m.CleaningOps,
		MissingByColumn:   m.MissingByColumn,
		Stages:            stages,
		Throughput:        m.CalculateThroughput(),
	})
}
