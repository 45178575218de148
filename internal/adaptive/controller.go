package adaptive

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Strategy selects how aggressively difficulty moves.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyModerate     Strategy = "moderate"
	StrategyAggressive   Strategy = "aggressive"
	StrategyAdaptive     Strategy = "adaptive"
)

// AdjustmentType is the direction of a recommended change.
type AdjustmentType string

const (
	AdjustIncrease AdjustmentType = "increase"
	AdjustDecrease AdjustmentType = "decrease"
	AdjustMaintain AdjustmentType = "maintain"
)

// Magnitude buckets the size of a recommended change.
type Magnitude string

const (
	MagnitudeSmall  Magnitude = "small"
	MagnitudeMedium Magnitude = "medium"
	MagnitudeLarge  Magnitude = "large"
)

// Timeline is how quickly a change should be applied.
type Timeline string

const (
	TimelineImmediate Timeline = "immediate"
	TimelineGradual   Timeline = "gradual"
	TimelineDelayed   Timeline = "delayed"
)

// Level is the discrete difficulty band derived from the score.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
	LevelExpert Level = "expert"
)

// Adjustment is one difficulty recommendation.
type Adjustment struct {
	CurrentDifficulty     float64        `json:"current_difficulty"`
	RecommendedDifficulty float64        `json:"recommended_difficulty"`
	Reason                string         `json:"reason"`
	Confidence            float64        `json:"confidence"`
	Type                  AdjustmentType `json:"type"`
	Magnitude             Magnitude      `json:"magnitude"`
	Timeline              Timeline       `json:"timeline"`
}

// Params are the rescaled game parameters after a committed adjustment.
type Params struct {
	DifficultyScore float64
	Level           Level
	PairCount       int
	TimeLimitSec    int
	HintsEnabled    bool
	PenaltyTimeSec  int
}

const (
	minPairCount = 4
	maxPairCount = 20
	minTimeLimit = 60

	// hintCutoff disables hints once difficulty passes it.
	hintCutoff = 0.7
)

// Controller holds one learner's difficulty score and produces and
// commits adjustments. Rate limiting of analysis runs is the
// orchestrator's job; the controller only records when commits happen.
type Controller struct {
	strategy        Strategy
	score           float64
	adjustmentCount int
	lastAdjustedAt  time.Time
	log             *slog.Logger
}

// NewController starts at medium difficulty (0.5) with the given
// strategy.
func NewController(strategy Strategy, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{strategy: strategy, score: 0.5, log: log}
}

// Score returns the current difficulty score in [0,1].
func (c *Controller) Score() float64 { return c.score }

// AdjustmentCount returns how many non-maintain commits have happened.
func (c *Controller) AdjustmentCount() int { return c.adjustmentCount }

// LastAdjustedAt returns the time of the last non-maintain commit.
func (c *Controller) LastAdjustedAt() time.Time { return c.lastAdjustedAt }

// Analyze produces a recommendation from the learner state. Any panic
// inside the analysis is recovered and reported as a maintain
// recommendation; a difficulty analysis must never take down a session.
func (c *Controller) Analyze(state LearnerState) (adj Adjustment) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("difficulty analysis failed, maintaining level",
				"learner", state.LearnerID, "panic", fmt.Sprint(r))
			adj = maintainAdjustment(state.CurrentDifficulty)
		}
	}()
	return c.analyze(state)
}

func maintainAdjustment(current float64) Adjustment {
	return Adjustment{
		CurrentDifficulty:     current,
		RecommendedDifficulty: current,
		Reason:                "analysis unavailable, keeping current difficulty",
		Confidence:            0.5,
		Type:                  AdjustMaintain,
		Magnitude:             MagnitudeSmall,
		Timeline:              TimelineImmediate,
	}
}

func (c *Controller) analyze(state LearnerState) Adjustment {
	load := cognitiveLoadScore(state.Load)
	perf := performanceScore(state.Performance)
	personal := personalFactorScore(state.Personal)

	current := state.CurrentDifficulty
	adj := Adjustment{
		CurrentDifficulty:     current,
		RecommendedDifficulty: current,
		Type:                  AdjustMaintain,
		Magnitude:             MagnitudeSmall,
		Timeline:              TimelineImmediate,
		Reason:                "difficulty is in the productive range",
	}

	switch {
	case load > HighLoadThreshold:
		reduction := c.reduction(load)
		adj.RecommendedDifficulty = math.Max(0.1, current-reduction)
		adj.Type = AdjustDecrease
		adj.Magnitude = magnitudeFor(reduction, 0.1, 0.2)
		adj.Reason = fmt.Sprintf("cognitive load too high (%.0f%%), easing off", load*100)

	case perf > HighAccuracyThreshold && load < LowLoadThreshold:
		increase := c.increase(perf, personal)
		adj.RecommendedDifficulty = math.Min(1.0, current+increase)
		adj.Type = AdjustIncrease
		adj.Magnitude = magnitudeFor(increase, 0.1, 0.2)
		adj.Reason = fmt.Sprintf("strong performance (%.0f%%) under light load, raising the bar", perf*100)

	case perf < LowAccuracyThreshold:
		reduction := c.reduction(1 - perf)
		adj.RecommendedDifficulty = math.Max(0.1, current-reduction)
		adj.Type = AdjustDecrease
		adj.Magnitude = magnitudeFor(reduction, 0.08, 0.15)
		adj.Reason = fmt.Sprintf("performance below target (%.0f%%), rebuilding confidence", perf*100)
	}

	// A learner in poor personal shape gets only half of any increase.
	if personal < 0.5 && adj.Type == AdjustIncrease {
		adj.RecommendedDifficulty = current + (adj.RecommendedDifficulty-current)*0.5
		adj.Magnitude = MagnitudeSmall
		adj.Timeline = TimelineGradual
	}

	adj.Confidence = adjustmentConfidence(load, perf, personal)
	return adj
}

// Commit applies a recommendation to the controller's stored score.
// Maintain recommendations leave everything untouched.
func (c *Controller) Commit(adj Adjustment, now time.Time) {
	if adj.Type == AdjustMaintain {
		return
	}
	c.score = clamp01(adj.RecommendedDifficulty)
	c.adjustmentCount++
	c.lastAdjustedAt = now
}

// LevelFor maps a difficulty score to its discrete band.
func LevelFor(score float64) Level {
	switch {
	case score <= 0.3:
		return LevelEasy
	case score <= 0.6:
		return LevelMedium
	case score <= 0.85:
		return LevelHard
	default:
		return LevelExpert
	}
}

// Params rescales the base game parameters for the current score:
// pair count moves up to ±30% with difficulty, the time limit moves
// inversely, hints switch off past the cutoff, and penalty time grows
// linearly from 5 to 15 seconds.
func (c *Controller) Params(basePairs, baseTimeLimitSec int) Params {
	d := c.score

	pairs := int(math.Round(float64(basePairs) * (0.7 + 0.6*d)))
	if pairs < minPairCount {
		pairs = minPairCount
	}
	if pairs > maxPairCount {
		pairs = maxPairCount
	}

	timeLimit := 0
	if baseTimeLimitSec > 0 {
		timeLimit = int(math.Round(float64(baseTimeLimitSec) * (1.3 - 0.6*d)))
		if timeLimit < minTimeLimit {
			timeLimit = minTimeLimit
		}
	}

	return Params{
		DifficultyScore: d,
		Level:           LevelFor(d),
		PairCount:       pairs,
		TimeLimitSec:    timeLimit,
		HintsEnabled:    d <= hintCutoff,
		PenaltyTimeSec:  int(math.Round(5 + 10*d)),
	}
}

// LoadScore collapses the load metrics into a single [0,1] value for
// callers outside the controller, such as adaptive-mode scoring.
func LoadScore(m CognitiveLoad) float64 {
	return cognitiveLoadScore(m)
}

// cognitiveLoadScore collapses the load metrics into [0,1].
func cognitiveLoadScore(m CognitiveLoad) float64 {
	score := 0.25*clamp01(m.ResponseTime/highResponseTimeMs) +
		0.20*m.ErrorRate +
		0.15*clamp01(float64(m.HesitationCount)/10) +
		0.15*clamp01(float64(m.RetryCount)/5) +
		0.10*(1-m.AttentionLevel) +
		0.10*m.FatigueLevel +
		0.05*m.FrustrationLevel
	return clamp01(score)
}

// performanceScore collapses the performance metrics into [0,1].
func performanceScore(m Performance) float64 {
	score := 0.30*m.Accuracy +
		0.20*m.Speed +
		0.20*m.Consistency +
		0.15*m.Improvement +
		0.10*m.Retention +
		0.03*m.Engagement +
		0.02*m.Confidence
	return clamp01(score)
}

// personalFactorScore collapses personal factors into [0,1]; stress
// counts against the learner.
func personalFactorScore(f PersonalFactors) float64 {
	score := 0.30*f.EnergyLevel +
		0.30*f.MotivationLevel +
		0.25*(1-f.StressLevel) +
		0.15*f.PriorKnowledge
	return clamp01(score)
}

func (c *Controller) reduction(loadOrError float64) float64 {
	base := loadOrError * 0.3
	switch c.strategy {
	case StrategyConservative:
		return base * 0.5
	case StrategyModerate:
		return base * 0.75
	case StrategyAggressive:
		return base * 1.2
	default:
		return base
	}
}

func (c *Controller) increase(perf, personal float64) float64 {
	base := (perf - 0.8) * personal * 0.4
	switch c.strategy {
	case StrategyConservative:
		return base * 0.6
	case StrategyModerate:
		return base * 0.8
	case StrategyAggressive:
		return base * 1.3
	default:
		return base
	}
}

func magnitudeFor(delta, medium, large float64) Magnitude {
	switch {
	case delta > large:
		return MagnitudeLarge
	case delta > medium:
		return MagnitudeMedium
	default:
		return MagnitudeSmall
	}
}

// adjustmentConfidence is higher at the extremes, where the signal is
// unambiguous.
func adjustmentConfidence(load, perf, personal float64) float64 {
	confidence := 0.7
	if load > 0.8 || load < 0.2 {
		confidence += 0.15
	}
	if perf > 0.9 || perf < 0.4 {
		confidence += 0.1
	}
	confidence += personal * 0.1
	return math.Min(math.Max(confidence, 0.3), 0.95)
}
