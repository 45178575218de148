package adaptive

import (
	"math"
	"time"
)

// Thresholds for metric normalization and adjustment decisions.
const (
	HighAccuracyThreshold = 0.85
	LowAccuracyThreshold  = 0.60
	HighLoadThreshold     = 0.75
	LowLoadThreshold      = 0.30

	highResponseTimeMs = 5000
	hesitationMs       = 5000
	fatigueWindow      = 10 * time.Minute
	frustrationWindow  = 5
)

// CognitiveLoad is a rolling picture of how taxed the learner is.
// Every field is in [0,1] except the raw counters.
type CognitiveLoad struct {
	ResponseTime     float64 // mean, milliseconds
	ErrorRate        float64
	HesitationCount  int
	RetryCount       int
	AttentionLevel   float64
	FatigueLevel     float64
	FrustrationLevel float64
}

// Performance is a rolling picture of how well the learner is doing.
type Performance struct {
	Accuracy    float64
	Speed       float64
	Consistency float64
	Improvement float64
	Retention   float64
	Engagement  float64
	Confidence  float64
}

// PersonalFactors captures session-external learner state. Callers
// without real signals should use NeutralFactors.
type PersonalFactors struct {
	EnergyLevel     float64
	MotivationLevel float64
	StressLevel     float64
	PriorKnowledge  float64
}

// NeutralFactors is the default when no personal signals are supplied.
func NeutralFactors() PersonalFactors {
	return PersonalFactors{
		EnergyLevel:     0.7,
		MotivationLevel: 0.7,
		StressLevel:     0.3,
		PriorKnowledge:  0.5,
	}
}

// LearnerState is the full input to one difficulty analysis.
type LearnerState struct {
	LearnerID         string
	SessionID         string
	CurrentDifficulty float64
	Load              CognitiveLoad
	Performance       Performance
	Personal          PersonalFactors
}

// attemptSample is one resolved match attempt.
type attemptSample struct {
	at           time.Time
	responseTime int
	correct      bool
	retried      bool
}

// Telemetry accumulates per-attempt samples within one session and
// derives the rolling metrics. Discarded at session end, never
// persisted.
type Telemetry struct {
	startedAt time.Time
	samples   []attemptSample
	streak    int
}

// NewTelemetry starts a telemetry window at the given session start.
func NewTelemetry(startedAt time.Time) *Telemetry {
	return &Telemetry{startedAt: startedAt}
}

// RecordAttempt folds one resolved attempt into the window. retried
// marks a repeat attempt on a pair that was already missed.
func (t *Telemetry) RecordAttempt(at time.Time, responseTimeMs int, correct, retried bool) {
	t.samples = append(t.samples, attemptSample{
		at:           at,
		responseTime: responseTimeMs,
		correct:      correct,
		retried:      retried,
	})
	if correct {
		t.streak++
	} else {
		t.streak = 0
	}
}

// Attempts returns the number of recorded attempts.
func (t *Telemetry) Attempts() int {
	return len(t.samples)
}

// Load derives the cognitive-load metrics as of now.
func (t *Telemetry) Load(now time.Time) CognitiveLoad {
	if len(t.samples) == 0 {
		return CognitiveLoad{AttentionLevel: 1}
	}

	mean := t.meanResponseTime()
	stddev := t.responseTimeStdDev(mean)

	var errors, hesitations, retries int
	for _, s := range t.samples {
		if !s.correct {
			errors++
		}
		if s.responseTime > hesitationMs {
			hesitations++
		}
		if s.retried {
			retries++
		}
	}

	recentErrors := 0
	recent := t.samples
	if len(recent) > frustrationWindow {
		recent = recent[len(recent)-frustrationWindow:]
	}
	for _, s := range recent {
		if !s.correct {
			recentErrors++
		}
	}

	return CognitiveLoad{
		ResponseTime:     mean,
		ErrorRate:        float64(errors) / float64(len(t.samples)),
		HesitationCount:  hesitations,
		RetryCount:       retries,
		AttentionLevel:   clamp01(1 - stddev/highResponseTimeMs),
		FatigueLevel:     clamp01(float64(now.Sub(t.startedAt)) / float64(fatigueWindow)),
		FrustrationLevel: clamp01(float64(recentErrors) / frustrationWindow),
	}
}

// PerformanceMetrics derives the performance metrics as of now.
func (t *Telemetry) PerformanceMetrics() Performance {
	if len(t.samples) == 0 {
		return Performance{}
	}

	mean := t.meanResponseTime()
	stddev := t.responseTimeStdDev(mean)

	correct := 0
	for _, s := range t.samples {
		if s.correct {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(t.samples))

	return Performance{
		Accuracy:    accuracy,
		Speed:       clamp01((highResponseTimeMs - mean) / highResponseTimeMs),
		Consistency: clamp01(1 - stddev/highResponseTimeMs),
		Improvement: t.improvement(),
		Retention:   accuracy,
		Engagement:  clamp01(float64(t.streak) / 5),
		Confidence:  accuracy,
	}
}

// improvement compares recent accuracy against the session's first
// attempts.
func (t *Telemetry) improvement() float64 {
	if len(t.samples) < 6 {
		return 0.5
	}
	half := len(t.samples) / 2
	early := accuracyOf(t.samples[:half])
	late := accuracyOf(t.samples[half:])
	return clamp01(0.5 + (late-early)/2)
}

func accuracyOf(samples []attemptSample) float64 {
	correct := 0
	for _, s := range samples {
		if s.correct {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}

func (t *Telemetry) meanResponseTime() float64 {
	sum := 0.0
	for _, s := range t.samples {
		sum += float64(s.responseTime)
	}
	return sum / float64(len(t.samples))
}

func (t *Telemetry) responseTimeStdDev(mean float64) float64 {
	if len(t.samples) < 2 {
		return 0
	}
	sum := 0.0
	for _, s := range t.samples {
		d := float64(s.responseTime) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(t.samples)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
