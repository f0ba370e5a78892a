package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radar"
	"github.com/wonny/radar/pkg/logger"
)

// Writer renders pipeline results as CSV files, one file per table.
// Missing values are written as empty cells so downstream tools can
// tell "not computable" apart from a real zero. The pivot is the one
// exception: its absent cells are filled with 0 by construction.
type Writer struct {
	outputDir string
	logger    *logger.Logger
}

// NewWriter creates a new report writer
func NewWriter(outputDir string, log *logger.Logger) *Writer {
	return &Writer{
		outputDir: outputDir,
		logger:    log.WithField("module", "report"),
	}
}

// WriteAll writes every result table and returns the written paths.
func (w *Writer) WriteAll(result *radar.Result) ([]string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	writers := []struct {
		name  string
		write func(string) error
	}{
		{"signals.csv", func(p string) error { return w.WriteSignals(p, result.Signals) }},
		{"monthly_scores.csv", func(p string) error { return w.WriteScored(p, result.Scored) }},
		{"top_months.csv", func(p string) error { return w.WriteTopMonths(p, result.TopMonths) }},
		{"pivot.csv", func(p string) error { return w.WritePivot(p, result.Pivot) }},
	}

	paths := make([]string, 0, len(writers))
	for _, table := range writers {
		path := filepath.Join(w.outputDir, table.name)
		if err := table.write(path); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", table.name, err)
		}
		paths = append(paths, path)
	}

	w.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"dir":    w.outputDir,
		"files":  len(paths),
	}).Info("Report written")

	return paths, nil
}

// WriteSignals writes the weekly signal table
func (w *Writer) WriteSignals(path string, rows []contracts.SignalRow) error {
	return w.writeCSV(path, []string{"date", "keyword", "trend", "trend_ma", "yoy_idx", "z_score", "month"},
		len(rows), func(i int) []string {
			r := rows[i]
			return []string{
				r.Date.Format("2006-01-02"),
				r.Keyword,
				formatFloat(r.Trend),
				formatOptional(r.TrendMA),
				formatOptional(r.YoYIdx),
				formatOptional(r.ZScore),
				r.Month,
			}
		})
}

// WriteScored writes the scored monthly table
func (w *Writer) WriteScored(path string, rows []contracts.ScoredAggregate) error {
	return w.writeCSV(path, []string{
		"keyword", "month", "avg_trend", "avg_yoy", "avg_z",
		"days", "hot_days", "hot_share", "z_scaled", "yoy_scaled", "act_score",
	}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			r.Keyword,
			r.Month,
			formatOptional(r.AvgTrend),
			formatOptional(r.AvgYoY),
			formatOptional(r.AvgZ),
			strconv.Itoa(r.Days),
			strconv.Itoa(r.HotDays),
			formatFloat(r.HotShare),
			formatOptional(r.ZScaled),
			formatOptional(r.YoYScaled),
			formatOptional(r.ActScore),
		}
	})
}

// WriteTopMonths writes the top-months table
func (w *Writer) WriteTopMonths(path string, rows []contracts.TopMonthEntry) error {
	return w.writeCSV(path, []string{"keyword", "month", "act_score", "avg_yoy", "avg_z", "hot_share"},
		len(rows), func(i int) []string {
			r := rows[i]
			return []string{
				r.Keyword,
				r.Month,
				formatOptional(r.ActScore),
				formatOptional(r.AvgYoY),
				formatOptional(r.AvgZ),
				formatFloat(r.HotShare),
			}
		})
}

// WritePivot writes the keyword x month activation matrix. The first
// column holds the keyword, remaining columns are months.
func (w *Writer) WritePivot(path string, pivot *contracts.PivotTable) error {
	header := append([]string{"keyword"}, pivot.Months...)

	return w.writeCSV(path, header, len(pivot.Keywords), func(i int) []string {
		row := make([]string, 0, len(pivot.Months)+1)
		row = append(row, pivot.Keywords[i])
		for _, score := range pivot.Scores[i] {
			row = append(row, formatFloat(score))
		}
		return row
	})
}

// writeCSV writes a header plus n rows produced by rowFn.
func (w *Writer) writeCSV(path string, header []string, n int, rowFn func(int) []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(rowFn(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
