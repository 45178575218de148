package memcurve

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Trend labels the direction a learner's retention is moving.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// RetentionPrediction projects how many currently tracked items will
// still be retained after the given number of days without review.
type RetentionPrediction struct {
	Days          int     `json:"days"`
	RetainedItems int     `json:"retained_items"`
	RetentionRate float64 `json:"retention_rate"`
}

// Report summarizes a learner's memory state across all tracked items.
type Report struct {
	LearnerID        string                `json:"learner_id"`
	GeneratedAt      time.Time             `json:"generated_at"`
	TotalItems       int                   `json:"total_items"`
	StatusCounts     map[Status]int        `json:"status_counts"`
	StrengthCounts   map[StrengthLevel]int `json:"strength_counts"`
	AverageStrength  float64               `json:"average_strength"`
	OverallRetention float64               `json:"overall_retention"`
	Trend            Trend                 `json:"trend"`
	DueCount         int                   `json:"due_count"`
	OverdueCount     int                   `json:"overdue_count"`
	Predictions      []RetentionPrediction `json:"predictions"`
	Recommendations  []string              `json:"recommendations"`
}

var predictionHorizons = []int{1, 3, 7, 30}

// AnalyzeLearner builds a memory report for a learner. A learner with
// no tracked items gets an empty report, not an error.
func (t *Tracker) AnalyzeLearner(learnerID string) *Report {
	now := t.now()
	items := t.LearnerItems(learnerID)

	r := &Report{
		LearnerID:      learnerID,
		GeneratedAt:    now,
		TotalItems:     len(items),
		StatusCounts:   make(map[Status]int),
		StrengthCounts: make(map[StrengthLevel]int),
	}
	if len(items) == 0 {
		r.Trend = TrendStable
		return r
	}

	var strengthSum, retentionSum float64
	for _, it := range items {
		r.StatusCounts[it.Status]++
		r.StrengthCounts[it.StrengthLevel]++
		strengthSum += it.MemoryStrength
		retentionSum += it.Accuracy()
		if it.Status != StatusForgotten {
			if it.IsDue(now) {
				r.DueCount++
			}
			if it.IsOverdue(now) {
				r.OverdueCount++
			}
		}
	}
	r.AverageStrength = strengthSum / float64(len(items))
	r.OverallRetention = retentionSum / float64(len(items))
	r.Trend = retentionTrend(items)
	r.Predictions = t.predictRetention(items, now)
	r.Recommendations = recommendations(r)
	return r
}

// predictRetention decays every item's current strength forward over
// each horizon and counts the ones still above the forgotten threshold.
func (t *Tracker) predictRetention(items []*Item, now time.Time) []RetentionPrediction {
	preds := make([]RetentionPrediction, 0, len(predictionHorizons))
	for _, days := range predictionHorizons {
		retained := 0
		for _, it := range items {
			projected := it.MemoryStrength * math.Exp(-it.ForgettingRate*float64(days))
			if projected >= 0.3 {
				retained++
			}
		}
		preds = append(preds, RetentionPrediction{
			Days:          days,
			RetainedItems: retained,
			RetentionRate: float64(retained) / float64(len(items)),
		})
	}
	return preds
}

// retentionTrend compares recent review outcomes against earlier ones
// across the learner's last curve points. Fewer than six data points is
// reported as stable.
func retentionTrend(items []*Item) Trend {
	var points []CurvePoint
	for _, it := range items {
		points = append(points, it.CurvePoints...)
	}
	if len(points) < 6 {
		return TrendStable
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	if len(points) > 10 {
		points = points[len(points)-10:]
	}
	half := len(points) / 2
	older := accuracyOf(points[:half])
	recent := accuracyOf(points[half:])
	switch {
	case recent > older+0.1:
		return TrendImproving
	case recent < older-0.1:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func accuracyOf(points []CurvePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	correct := 0
	for _, p := range points {
		if p.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(points))
}

// recommendations derives actionable study advice from the report.
func recommendations(r *Report) []string {
	var recs []string
	if r.OverdueCount > 0 {
		recs = append(recs, fmt.Sprintf("review %d overdue items before learning new content", r.OverdueCount))
	} else if r.DueCount > 0 {
		recs = append(recs, fmt.Sprintf("%d items are due for review", r.DueCount))
	}
	if n := r.StatusCounts[StatusForgotten]; n > 0 {
		recs = append(recs, fmt.Sprintf("relearn %d forgotten items from scratch", n))
	}
	if weak := r.StrengthCounts[StrengthVeryWeak] + r.StrengthCounts[StrengthWeak]; weak > r.TotalItems/2 {
		recs = append(recs, "shorten review intervals, most items are weak")
	}
	if r.Trend == TrendDeclining {
		recs = append(recs, "retention is declining, consider shorter daily sessions")
	}
	if r.AverageStrength >= 0.8 && r.Trend != TrendDeclining {
		recs = append(recs, "memory is strong, ready for harder content")
	}
	if len(recs) == 0 {
		recs = append(recs, "keep the current review pace")
	}
	return recs
}
