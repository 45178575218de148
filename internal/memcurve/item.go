package memcurve

import "time"

// Status tracks where an item sits in its learning lifecycle.
type Status string

const (
	StatusNew       Status = "new"
	StatusLearning  Status = "learning"
	StatusReview    Status = "review"
	StatusMature    Status = "mature"
	StatusForgotten Status = "forgotten"
)

// StrengthLevel buckets memory strength for display and reporting.
type StrengthLevel string

const (
	StrengthVeryWeak   StrengthLevel = "very_weak"   // [0, 0.2)
	StrengthWeak       StrengthLevel = "weak"        // [0.2, 0.4)
	StrengthModerate   StrengthLevel = "moderate"    // [0.4, 0.6)
	StrengthStrong     StrengthLevel = "strong"      // [0.6, 0.8)
	StrengthVeryStrong StrengthLevel = "very_strong" // [0.8, 1.0]
)

// MaxCurvePoints bounds the per-item curve-point log.
const MaxCurvePoints = 100

// CurvePoint records one observation on an item's forgetting curve.
type CurvePoint struct {
	Timestamp    time.Time `json:"timestamp"`
	Strength     float64   `json:"strength"`
	Correct      bool      `json:"correct"`
	ResponseTime int       `json:"response_time_ms"`
	Confidence   float64   `json:"confidence"`
}

// Item is the memory record for a single (learner, content) pair.
// It is created on first exposure and mutated only by the Tracker.
type Item struct {
	ContentID string `json:"content_id"`
	LearnerID string `json:"learner_id"`

	Status         Status        `json:"status"`
	MemoryStrength float64       `json:"memory_strength"`
	StrengthLevel  StrengthLevel `json:"strength_level"`

	FirstLearnedAt time.Time `json:"first_learned_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	NextReviewAt   time.Time `json:"next_review_at"`

	TotalReviews         int `json:"total_reviews"`
	CorrectReviews       int `json:"correct_reviews"`
	ConsecutiveCorrect   int `json:"consecutive_correct"`
	ConsecutiveIncorrect int `json:"consecutive_incorrect"`

	// Review intervals in days. Fractional values are meaningful
	// (0.5 = 12 hours).
	CurrentInterval  float64 `json:"current_interval"`
	PreviousInterval float64 `json:"previous_interval"`

	DifficultyFactor float64 `json:"difficulty_factor"` // [1.3, 2.5]
	ForgettingRate   float64 `json:"forgetting_rate"`   // (0, 1]

	GameMode        string `json:"game_mode"`
	DifficultyLevel string `json:"difficulty_level"`
	GEPTLevel       string `json:"gept_level,omitempty"`

	CurvePoints []CurvePoint `json:"curve_points"`
}

// Accuracy returns the lifetime correct-review ratio.
func (it *Item) Accuracy() float64 {
	if it.TotalReviews == 0 {
		return 0
	}
	return float64(it.CorrectReviews) / float64(it.TotalReviews)
}

// IsDue returns true if the item is at or past its next review time.
func (it *Item) IsDue(now time.Time) bool {
	return !now.Before(it.NextReviewAt)
}

// IsOverdue returns true if the item is more than one day past due.
func (it *Item) IsOverdue(now time.Time) bool {
	return now.Sub(it.NextReviewAt) > 24*time.Hour
}

// LastPoint returns the most recent curve point, or nil if none exist.
func (it *Item) LastPoint() *CurvePoint {
	if len(it.CurvePoints) == 0 {
		return nil
	}
	return &it.CurvePoints[len(it.CurvePoints)-1]
}

// appendPoint adds a curve point, keeping the log ring-bounded.
func (it *Item) appendPoint(p CurvePoint) {
	it.CurvePoints = append(it.CurvePoints, p)
	if len(it.CurvePoints) > MaxCurvePoints {
		it.CurvePoints = it.CurvePoints[len(it.CurvePoints)-MaxCurvePoints:]
	}
}

// levelForStrength maps a strength value to its display bucket.
func levelForStrength(s float64) StrengthLevel {
	switch {
	case s >= 0.8:
		return StrengthVeryStrong
	case s >= 0.6:
		return StrengthStrong
	case s >= 0.4:
		return StrengthModerate
	case s >= 0.2:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}

// statusFor derives the lifecycle status from the item's counters.
func statusFor(it *Item) Status {
	switch {
	case it.MemoryStrength < 0.3:
		return StatusForgotten
	case it.MemoryStrength >= 0.8 && it.TotalReviews >= 3 && it.ConsecutiveCorrect >= 2:
		return StatusMature
	case it.TotalReviews >= 2:
		return StatusReview
	default:
		return StatusLearning
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
