package game

import (
	"time"

	"github.com/abhisek/lexmatch/internal/content"
)

// Status is the lifecycle phase of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// State is the full observable session state. Listeners receive
// copies; mutating a copy has no effect on the session.
type State struct {
	SessionID string    `json:"session_id"`
	LearnerID string    `json:"learner_id"`
	Status    Status    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`

	Pairs         []content.Pair `json:"pairs"`
	SelectedItems []string       `json:"selected_items"`
	MatchedPairs  []string       `json:"matched_pairs"`

	Score          int `json:"score"`
	TimeRemaining  int `json:"time_remaining"` // seconds; 0 when untimed
	Attempts       int `json:"attempts"`
	CorrectMatches int `json:"correct_matches"`
	FailedAttempts int `json:"failed_attempts"`
	HintsUsed      int `json:"hints_used"`
	ExtensionsUsed int `json:"extensions_used"`
	PerfectPairs   int `json:"perfect_pairs"` // sub-1.5s correct matches
	CurrentStreak  int `json:"current_streak"`
	BestStreak     int `json:"best_streak"`
}

// Result is the final outcome of a completed session.
type Result struct {
	SessionID           string            `json:"session_id"`
	LearnerID           string            `json:"learner_id"`
	Score               int               `json:"score"`
	Accuracy            float64           `json:"accuracy"` // [0,1]
	CompletionTime      float64           `json:"completion_time"` // seconds
	TotalAttempts       int               `json:"total_attempts"`
	CorrectMatches      int               `json:"correct_matches"`
	HintsUsed           int               `json:"hints_used"`
	AverageResponseTime float64           `json:"average_response_time"` // milliseconds
	Difficulty          string            `json:"difficulty"`
	GEPTLevel           content.GEPTLevel `json:"gept_level,omitempty"`
	BestStreak          int               `json:"best_streak"`
	MemoryRetention     float64           `json:"memory_retention"`    // [0,100]
	LearningEfficiency  float64           `json:"learning_efficiency"`
	Recommendations     []string          `json:"recommendations"`
	Timestamp           time.Time         `json:"timestamp"`
}

// snapshot deep-copies the slices so listeners cannot reach back into
// live session state.
func (s *State) snapshot() State {
	cp := *s
	cp.Pairs = append([]content.Pair(nil), s.Pairs...)
	cp.SelectedItems = append([]string(nil), s.SelectedItems...)
	cp.MatchedPairs = append([]string(nil), s.MatchedPairs...)
	return cp
}

func (s *State) accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.CorrectMatches) / float64(s.Attempts)
}
