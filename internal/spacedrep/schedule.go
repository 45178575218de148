package spacedrep

import (
	"math"
	"time"

	"github.com/abhisek/lexmatch/internal/memcurve"
)

// Priority orders review-schedule items.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// rank maps priorities to a total order; higher sorts first.
func (p Priority) rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// ReviewType describes why an item is on the schedule.
type ReviewType string

const (
	ReviewInitial       ReviewType = "initial"
	ReviewReinforcement ReviewType = "reinforcement"
	ReviewMaintenance   ReviewType = "maintenance"
	ReviewRecovery      ReviewType = "recovery"
)

// ScheduleItem is one planned review.
type ScheduleItem struct {
	ContentID         string     `json:"content_id"`
	LearnerID         string     `json:"learner_id"`
	ScheduledAt       time.Time  `json:"scheduled_at"`
	Priority          Priority   `json:"priority"`
	EstimatedDuration int        `json:"estimated_duration"` // minutes
	ReviewType        ReviewType `json:"review_type"`
	MemoryStrength    float64    `json:"memory_strength"`
	DifficultyLevel   string     `json:"difficulty_level"`
	TotalReviews      int        `json:"total_reviews"`
}

// Preferences bound the size and flavor of a learning plan.
type Preferences struct {
	DailyStudyTime       int    // minutes
	MaxNewItems          int
	MaxReviewItems       int
	DifficultyPreference string // easy, balanced, challenging
}

// AdaptiveFlags signal plan-level corrections derived from aggregate
// retention.
type AdaptiveFlags struct {
	ReduceDifficulty bool `json:"reduce_difficulty"`
	ExtendIntervals  bool `json:"extend_intervals"`
	ReduceLoad       bool `json:"reduce_load"`
}

// DailyGoal is the day's target workload.
type DailyGoal struct {
	NewItems    int `json:"new_items"`
	ReviewItems int `json:"review_items"`
	StudyTime   int `json:"study_time"` // minutes
}

// LearningPlan is the prioritized day plan for one learner.
type LearningPlan struct {
	LearnerID              string         `json:"learner_id"`
	GeneratedAt            time.Time      `json:"generated_at"`
	Goal                   DailyGoal      `json:"goal"`
	Schedule               []ScheduleItem `json:"schedule"`
	PriorityItems          []ScheduleItem `json:"priority_items"`
	EstimatedTime          int            `json:"estimated_time"` // minutes
	DifficultyDistribution map[string]int `json:"difficulty_distribution"`
	Flags                  AdaptiveFlags  `json:"flags"`
}

// priorityFor buckets an item by how far its review time is from now.
func priorityFor(it *memcurve.Item, now time.Time) Priority {
	overdue := now.Sub(it.NextReviewAt)
	const day = 24 * time.Hour
	switch {
	case overdue > day:
		return PriorityUrgent
	case overdue > 0:
		return PriorityHigh
	case overdue > -3*day:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// estimateDuration guesses review minutes for one item: 2 minute base,
// longer for weak memories and new items, scaled by difficulty, never
// under 1.
func estimateDuration(it *memcurve.Item) int {
	d := 2.0
	if it.MemoryStrength < 0.3 {
		d += 3
	} else if it.MemoryStrength > 0.8 {
		d -= 1
	}
	switch it.DifficultyLevel {
	case "easy":
		d *= 0.8
	case "hard":
		d *= 1.3
	case "expert":
		d *= 1.5
	}
	if it.TotalReviews < 3 {
		d *= 1.2
	}
	return int(math.Max(1, math.Round(d)))
}

// reviewTypeFor classifies why this review is needed.
func reviewTypeFor(it *memcurve.Item) ReviewType {
	switch {
	case it.TotalReviews <= 1:
		return ReviewInitial
	case it.Status == memcurve.StatusForgotten:
		return ReviewRecovery
	case it.MemoryStrength < 0.6:
		return ReviewReinforcement
	default:
		return ReviewMaintenance
	}
}
