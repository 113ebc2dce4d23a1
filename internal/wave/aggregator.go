// Package wave turns staff task events into a busyness series and finds the
// calm windows in which a position can be notified.
package wave

import (
	"errors"
	"math"
	"slices"

	"github.com/KasumiMercury/primind-floor-operations/internal/timemath"
)

const (
	DefaultBucketMinutes = 5
	MaxBucketMinutes     = 24 * 60

	// MaxSpanMs bounds the range a single series may cover.
	MaxSpanMs = 48 * 60 * timemath.MinuteMs

	MaxSmoothRadius = 12
)

var ErrSpanTooLarge = errors.New("series range exceeds 48 hours")

// Task is one time-stamped piece of work for a staff position.
type Task struct {
	TimeMs     int64  `json:"timeMs"`
	Guests     int    `json:"guests"`
	PositionID string `json:"positionId"`
	Table      string `json:"table,omitempty"`
}

type CalmWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Series holds one score per bucket; Slots[i] is the start of bucket i.
type Series struct {
	Slots  []int64 `json:"slots"`
	Scores []int   `json:"scores"`
}

type SeriesQuery struct {
	StartMs       int64
	EndMs         int64
	BucketMinutes int
	PositionID    string
	VisibleTables []string
}

type CalmParams struct {
	BucketMinutes  int
	Threshold      int
	MinCalmMinutes int
}

func bucketWidth(bucketMinutes int) int64 {
	if bucketMinutes < 1 {
		bucketMinutes = DefaultBucketMinutes
	}
	return int64(min(bucketMinutes, MaxBucketMinutes)) * timemath.MinuteMs
}

// SpanFits reports whether [startMs, endMs) stays within MaxSpanMs. An empty
// range always fits.
func SpanFits(startMs, endMs int64) bool {
	return endMs <= startMs || uint64(endMs)-uint64(startMs) <= uint64(MaxSpanMs)
}

// BucketOf floors ms to the start of its bucket.
func BucketOf(ms int64, bucketMinutes int) int64 {
	w := bucketWidth(bucketMinutes)
	return timemath.FloorDiv(ms, w) * w
}

// BuildSeries scores every bucket in [StartMs, EndMs) as
// (number of matching tasks) * (sum of their guests). Bucket widths above
// MaxBucketMinutes are clamped and the series stops after MaxSpanMs.
func BuildSeries(tasks []Task, q SeriesQuery) Series {
	w := bucketWidth(q.BucketMinutes)

	counts := make(map[int64]int)
	guests := make(map[int64]int)
	for _, task := range tasks {
		if task.PositionID != q.PositionID {
			continue
		}
		if len(q.VisibleTables) > 0 && (task.Table == "" || !slices.Contains(q.VisibleTables, task.Table)) {
			continue
		}
		b := BucketOf(task.TimeMs, q.BucketMinutes)
		counts[b]++
		guests[b] += task.Guests
	}

	var s Series
	first := BucketOf(q.StartMs, q.BucketMinutes)
	maxSlots := int(MaxSpanMs/w) + 1
	for k := 0; k < maxSlots; k++ {
		slot := first + int64(k)*w
		if slot >= q.EndMs || slot < first {
			break
		}
		s.Slots = append(s.Slots, slot)
		s.Scores = append(s.Scores, counts[slot]*guests[slot])
	}
	return s
}

// Smooth applies a centered moving average of the given radius (1 means
// three points). A missing neighbour at the edges is replaced by the value
// itself. Results are rounded to the nearest integer. radius is clamped to
// [1, MaxSmoothRadius].
func Smooth(scores []int, radius int) []int {
	radius = max(1, min(radius, MaxSmoothRadius))
	out := make([]int, len(scores))
	for i := range scores {
		sum := 0
		for k := i - radius; k <= i+radius; k++ {
			if k < 0 || k >= len(scores) {
				sum += scores[i]
				continue
			}
			sum += scores[k]
		}
		out[i] = int(math.Round(float64(sum) / float64(2*radius+1)))
	}
	return out
}

// ExtractCalmWindows returns the maximal runs of buckets scoring below the
// threshold that last at least MinCalmMinutes. A window ends at the close of
// its last bucket. Windows come out in ascending start order.
func ExtractCalmWindows(s Series, p CalmParams) []CalmWindow {
	w := bucketWidth(p.BucketMinutes)
	minBuckets := int(math.Ceil(float64(p.MinCalmMinutes) / float64(w/timemath.MinuteMs)))
	if minBuckets < 1 {
		minBuckets = 1
	}

	n := min(len(s.Slots), len(s.Scores))
	var windows []CalmWindow
	runStart := -1
	flush := func(last int) {
		if runStart >= 0 && last-runStart+1 >= minBuckets {
			windows = append(windows, CalmWindow{Start: s.Slots[runStart], End: s.Slots[last] + w})
		}
		runStart = -1
	}

	for i := 0; i < n; i++ {
		if s.Scores[i] < p.Threshold {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i - 1)
	}
	flush(n - 1)
	return windows
}

// ComputeNextNotifyAt returns the first window start plus delay that is not
// in the past. Windows must be sorted by start.
func ComputeNextNotifyAt(windows []CalmWindow, notifyDelayMinutes int, nowMs int64) (int64, bool) {
	delay := int64(notifyDelayMinutes) * timemath.MinuteMs
	for _, w := range windows {
		if at := w.Start + delay; at >= nowMs {
			return at, true
		}
	}
	return 0, false
}
