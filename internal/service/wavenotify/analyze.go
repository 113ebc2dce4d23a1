package wavenotify

import (
	"errors"
	"fmt"
	"slices"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/timemath"
	"github.com/KasumiMercury/primind-floor-operations/internal/wave"
)

const DefaultSmoothRadius = 1

// ErrSeriesLimit is returned when the requested series would exceed the
// bucket, radius or range limits of the wave package.
var ErrSeriesLimit = errors.New("wave series limit exceeded")

type AnalyzeParams struct {
	PositionID    string
	VisibleTables []string

	// StartMs and EndMs bound the series. When EndMs <= StartMs the series
	// covers the buckets between the first and last matching task.
	StartMs int64
	EndMs   int64

	Settings     domain.WaveSettings
	SmoothRadius int
	NowMs        int64
}

type Analysis struct {
	Series     wave.Series       `json:"series"`
	Smoothed   []int             `json:"smoothed"`
	Windows    []wave.CalmWindow `json:"windows"`
	Window     *wave.CalmWindow  `json:"window,omitempty"`
	NotifyAtMs int64             `json:"notifyAtMs,omitempty"`
}

// Validate rejects parameters the series builder would otherwise clamp.
func (p AnalyzeParams) Validate() error {
	if p.Settings.BucketMinutes < 0 || p.Settings.BucketMinutes > wave.MaxBucketMinutes {
		return fmt.Errorf("%w: bucketMinutes must be between 1 and %d", ErrSeriesLimit, wave.MaxBucketMinutes)
	}
	if p.SmoothRadius < 0 || p.SmoothRadius > wave.MaxSmoothRadius {
		return fmt.Errorf("%w: smoothRadius must be between 1 and %d", ErrSeriesLimit, wave.MaxSmoothRadius)
	}
	if !wave.SpanFits(p.StartMs, p.EndMs) {
		return fmt.Errorf("%w: %w", ErrSeriesLimit, wave.ErrSpanTooLarge)
	}
	return nil
}

// Analyze runs the whole wave pipeline for one position: series, smoothing,
// calm windows and the next notification time.
func Analyze(tasks []wave.Task, p AnalyzeParams) (Analysis, error) {
	if err := p.Validate(); err != nil {
		return Analysis{}, err
	}

	start, end := p.StartMs, p.EndMs
	if end <= start {
		var ok bool
		start, end, ok = activeSpan(tasks, p)
		if !ok {
			return Analysis{}, nil
		}
		if !wave.SpanFits(start, end) || end <= start {
			return Analysis{}, fmt.Errorf("%w: tasks for %s span more than 48 hours", ErrSeriesLimit, p.PositionID)
		}
	}

	series := wave.BuildSeries(tasks, wave.SeriesQuery{
		StartMs:       start,
		EndMs:         end,
		BucketMinutes: p.Settings.BucketMinutes,
		PositionID:    p.PositionID,
		VisibleTables: p.VisibleTables,
	})
	smoothed := wave.Smooth(series.Scores, p.SmoothRadius)
	windows := wave.ExtractCalmWindows(wave.Series{Slots: series.Slots, Scores: smoothed}, wave.CalmParams{
		BucketMinutes:  p.Settings.BucketMinutes,
		Threshold:      p.Settings.Threshold,
		MinCalmMinutes: p.Settings.MinCalmMinutes,
	})

	a := Analysis{Series: series, Smoothed: smoothed, Windows: windows}
	at, ok := wave.ComputeNextNotifyAt(windows, p.Settings.NotifyDelayMinutes, p.NowMs)
	if !ok {
		return a, nil
	}
	a.NotifyAtMs = at
	for i, w := range windows {
		if w.Start+int64(p.Settings.NotifyDelayMinutes)*timemath.MinuteMs == at {
			a.Window = &windows[i]
			break
		}
	}
	return a, nil
}

func activeSpan(tasks []wave.Task, p AnalyzeParams) (int64, int64, bool) {
	var first, last int64
	found := false
	for _, t := range tasks {
		if t.PositionID != p.PositionID {
			continue
		}
		if len(p.VisibleTables) > 0 && !slices.Contains(p.VisibleTables, t.Table) {
			continue
		}
		if !found || t.TimeMs < first {
			first = t.TimeMs
		}
		if !found || t.TimeMs > last {
			last = t.TimeMs
		}
		found = true
	}
	if !found {
		return 0, 0, false
	}
	start := wave.BucketOf(first, p.Settings.BucketMinutes)
	end := wave.BucketOf(last, p.Settings.BucketMinutes) + int64(bucketMinutesOrDefault(p.Settings.BucketMinutes))*timemath.MinuteMs
	return start, end, true
}

func bucketMinutesOrDefault(m int) int {
	if m < 1 {
		return wave.DefaultBucketMinutes
	}
	return m
}
