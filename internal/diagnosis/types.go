package diagnosis

import (
	"time"

	"github.com/abhisek/lexmatch/internal/content"
)

// ErrorType classifies a wrong match.
type ErrorType string

const (
	ErrorSemantic           ErrorType = "semantic"
	ErrorVisualConfusion    ErrorType = "visual"
	ErrorMemoryLapse        ErrorType = "memory"
	ErrorTimePressure       ErrorType = "time_pressure"
	ErrorPhonetic           ErrorType = "phonetic"
	ErrorCulturalGap        ErrorType = "cultural"
	ErrorDifficultyMismatch ErrorType = "difficulty"
)

// Severity buckets a pattern by its frequency.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Trend labels whether same-type errors are getting faster or slower.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
)

// Context is the game situation snapshot captured with each error.
type Context struct {
	GameMode      string            `json:"game_mode"`
	Difficulty    string            `json:"difficulty"`
	GEPTLevel     content.GEPTLevel `json:"gept_level,omitempty"`
	TimeRemaining int               `json:"time_remaining"` // seconds; 0 means untimed
	CurrentStreak int               `json:"current_streak"`
	TotalAttempts int               `json:"total_attempts"`
}

// ClassifyInput holds the mismatched items and their context.
type ClassifyInput struct {
	Left        content.Item
	Right       content.Item
	CorrectPair *content.Pair
	Context     Context
}

// Record is one immutable error log entry.
type Record struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Left         content.Item  `json:"left"`
	Right        content.Item  `json:"right"`
	CorrectPair  *content.Pair `json:"correct_pair,omitempty"`
	ErrorType    ErrorType     `json:"error_type"`
	ResponseTime int           `json:"response_time"` // milliseconds
	Confidence   float64       `json:"confidence"`
	Classifier   string        `json:"classifier"`
	Context      Context       `json:"context"`
}

// Pattern aggregates all recorded errors of one type.
type Pattern struct {
	ErrorType           ErrorType `json:"error_type"`
	Frequency           int       `json:"frequency"`
	AverageResponseTime float64   `json:"average_response_time"`
	Contexts            []string  `json:"contexts"`
	Severity            Severity  `json:"severity"`
	Trend               Trend     `json:"trend"`
	Recommendations     []string  `json:"recommendations"`
}

// AnalysisResult is the output of a full pattern analysis.
type AnalysisResult struct {
	TotalErrors        int         `json:"total_errors"`
	ErrorRate          float64     `json:"error_rate"`
	DominantErrorTypes []ErrorType `json:"dominant_error_types"`
	Patterns           []*Pattern  `json:"patterns"`
	Insights           []string    `json:"insights"`
	Recommendations    []string    `json:"recommendations"`
	LearningGaps       []ErrorType `json:"learning_gaps"`
	Strengths          []ErrorType `json:"strengths"`
}
