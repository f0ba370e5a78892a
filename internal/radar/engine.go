package radar

import (
	"math"
	"sort"
	"sync"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radarconfig"
	"github.com/wonny/radar/pkg/logger"
)

// defaultWorkers bounds the per-keyword worker pool.
const defaultWorkers = 4

// Engine converts raw per-day trend observations into smoothed,
// normalized signals, independently per keyword. Keyword partitions
// never see each other's history.
//
// The engine has no fatal paths: every edge case (short history, zero
// denominators) degrades to a missing derived field.
type Engine struct {
	cfg     radarconfig.Signals
	workers int
	logger  *logger.Logger
}

// NewEngine creates a new signal engine.
func NewEngine(cfg radarconfig.Signals, log *logger.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		workers: defaultWorkers,
		logger:  log.WithField("module", "signal_engine"),
	}
}

// WithWorkers overrides the partition worker count.
func (e *Engine) WithWorkers(n int) *Engine {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Transform computes signal rows for the full observation set. Input
// order does not matter: partitions are sorted chronologically before
// any windowed computation. Output is ordered by keyword ascending,
// then date ascending.
func (e *Engine) Transform(observations []contracts.Observation) []contracts.SignalRow {
	partitions := make(map[string][]contracts.Observation)
	dropped := 0
	for _, o := range observations {
		if o.Trend == nil && e.cfg.MissingPolicy == radarconfig.MissingDrop {
			dropped++
			continue
		}
		partitions[o.Keyword] = append(partitions[o.Keyword], o)
	}

	keywords := make([]string, 0, len(partitions))
	for kw := range partitions {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	// Partitions are mutually independent, so fan out one task per
	// keyword and merge in sorted keyword order for determinism.
	results := make([][]contracts.SignalRow, len(keywords))
	jobs := make(chan int)

	workers := e.workers
	if workers > len(keywords) {
		workers = len(keywords)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.transformKeyword(keywords[i], partitions[keywords[i]])
			}
		}()
	}

	for i := range keywords {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	total := 0
	for _, rows := range results {
		total += len(rows)
	}

	out := make([]contracts.SignalRow, 0, total)
	for _, rows := range results {
		out = append(out, rows...)
	}

	e.logger.WithFields(map[string]interface{}{
		"keywords": len(keywords),
		"rows":     len(out),
		"dropped":  dropped,
	}).Debug("Signal transform completed")

	return out
}

// transformKeyword computes the signal series for a single keyword using
// only that keyword's own history.
func (e *Engine) transformKeyword(keyword string, obs []contracts.Observation) []contracts.SignalRow {
	sorted := make([]contracts.Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	trend := make([]*float64, len(sorted))
	for i, o := range sorted {
		v := e.coerceTrend(o.Trend)
		trend[i] = &v
	}

	maMinPeriods := e.cfg.MAWindow / 2
	if maMinPeriods < 1 {
		maMinPeriods = 1
	}
	ma := rollingMean(trend, e.cfg.MAWindow, maMinPeriods)

	zMinPeriods := e.cfg.ZWindow / 3
	if zMinPeriods < 3 {
		zMinPeriods = 3
	}
	m := rollingMean(ma, e.cfg.ZWindow, zMinPeriods)
	s := rollingStd(ma, e.cfg.ZWindow, zMinPeriods)

	rows := make([]contracts.SignalRow, len(sorted))
	for i, o := range sorted {
		row := contracts.SignalRow{
			Date:    o.Date,
			Keyword: keyword,
			Trend:   *trend[i],
			TrendMA: ma[i],
			Month:   contracts.MonthLabel(o.Date),
		}

		// Year-over-year index. Undefined for the first yoy_lag
		// observations; a zero denominator is missing, not an error.
		if i >= e.cfg.YoYLag {
			if denom := *trend[i-e.cfg.YoYLag]; denom != 0 {
				row.YoYIdx = contracts.Float(*trend[i] / denom * 100.0)
			}
		}

		// Z-score on the smoothed series, only once a full z window of
		// positions exists; series shorter than z_window carry no z at
		// all. Guard s == 0 so the result is missing rather than
		// infinite.
		if i >= e.cfg.ZWindow-1 && ma[i] != nil && m[i] != nil && s[i] != nil && *s[i] > 0 {
			row.ZScore = contracts.Float((*ma[i] - *m[i]) / *s[i])
		}

		rows[i] = row
	}

	return rows
}

// coerceTrend applies the missing-value policy. Under the default "zero"
// policy a missing trend becomes 0, which intentionally matches prior
// runs even though it conflates "not measured" with "no interest".
func (e *Engine) coerceTrend(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}
