// Package scoring computes per-match score deltas and penalties under
// six selectable modes, plus one-shot end-of-session bonuses. Every
// function is pure over its inputs; the orchestrator owns the running
// score.
package scoring

import "math"

// Mode selects the scoring formula for a session.
type Mode string

const (
	ModeStandard    Mode = "standard"
	ModeTimeBased   Mode = "time-based"
	ModeStreakBased Mode = "streak-based"
	ModeAccuracy    Mode = "accuracy-based"
	ModeAdaptive    Mode = "adaptive"
	ModeCompetitive Mode = "competitive"
)

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeStandard, ModeTimeBased, ModeStreakBased, ModeAccuracy, ModeAdaptive, ModeCompetitive:
		return true
	}
	return false
}

// Config is the per-session scoring configuration.
type Config struct {
	Mode             Mode
	BaseScore        int
	StreakMultiplier float64 // > 1; streak bonuses scale on (multiplier-1)
	TimeBonus        bool    // standard mode: add floor(timeRemaining/10)
	EndBonuses       bool    // enable one-shot session-end bonuses
}

// MatchState is the session state a single delta computation reads.
type MatchState struct {
	Streak          int     // current streak including this match if correct
	ResponseTimeMs  int
	TimeRemaining   int     // seconds; 0 when untimed
	Accuracy        float64 // running accuracy in [0,1]
	DifficultyScore float64 // adaptive difficulty in [0,1]
	CognitiveLoad   float64 // normalized load in [0,1]
	PerfectPairs    int     // competitive: prior sub-1.5s matches
	Attempts        int
	FailedAttempts  int
}

// perfectResponseMs is the competitive-mode cutoff for a "perfect"
// match.
const perfectResponseMs = 1500

// Delta returns the score gain for one resolved match. Incorrect
// matches always return 0; losses go through Penalty. Fractional
// results round to the nearest point.
func Delta(cfg Config, correct bool, st MatchState) int {
	if !correct {
		return 0
	}
	base := float64(cfg.BaseScore)

	switch cfg.Mode {
	case ModeTimeBased:
		speedFactor := math.Max(0, float64(10000-st.ResponseTimeMs)/10000)
		return int(math.Round(base * (0.5 + 0.5*speedFactor)))

	case ModeStreakBased:
		mult := math.Min(3.0, 1+float64(st.Streak)*(cfg.StreakMultiplier-1))
		return int(math.Round(base * mult))

	case ModeAccuracy:
		return int(math.Round(base * (0.5 + 1.5*st.Accuracy)))

	case ModeAdaptive:
		difficulty := 0.8 + 0.4*st.DifficultyScore
		loadRelief := 1.2 - 0.4*st.CognitiveLoad
		return int(math.Round(base * difficulty * loadRelief))

	case ModeCompetitive:
		score := base
		if st.ResponseTimeMs < perfectResponseMs {
			score *= 1.5
			score *= 1 + 0.1*float64(st.PerfectPairs)
		}
		return int(math.Round(score))

	default: // standard
		score := base
		if st.Streak > 1 {
			score += float64(st.Streak-1) * base * (cfg.StreakMultiplier - 1)
		}
		if cfg.TimeBonus && st.TimeRemaining > 0 {
			score += float64(st.TimeRemaining / 10)
		}
		return int(math.Round(score))
	}
}

// Penalty returns the points to subtract for one incorrect match. The
// caller floors the running score at 0. Streak mode escalates with the
// streak just lost; accuracy mode escalates with the failure ratio.
func Penalty(cfg Config, st MatchState) int {
	switch cfg.Mode {
	case ModeTimeBased:
		return 5
	case ModeStreakBased:
		return 10 + 2*st.Streak
	case ModeAccuracy:
		failRatio := 0.0
		if st.Attempts > 0 {
			failRatio = float64(st.FailedAttempts) / float64(st.Attempts)
		}
		return 10 + int(10*failRatio)
	case ModeAdaptive:
		return int(5 + 10*st.DifficultyScore)
	case ModeCompetitive:
		return 20
	default:
		return 10
	}
}

// Apply adds a delta or subtracts a penalty, flooring at 0.
func Apply(score, delta int) int {
	score += delta
	if score < 0 {
		return 0
	}
	return score
}

// SessionStats is what the end-of-session bonus computation reads.
type SessionStats struct {
	Accuracy       float64
	PerfectGame    bool // every pair matched on the first attempt
	TimeRemaining  int  // seconds left at completion
	TimeLimit      int  // configured limit; 0 when untimed
}

// SessionBonus returns the one-shot bonus added at session end.
// Returns 0 when end bonuses are disabled in config.
func SessionBonus(cfg Config, stats SessionStats) int {
	if !cfg.EndBonuses {
		return 0
	}
	bonus := 0
	if stats.PerfectGame {
		bonus += cfg.BaseScore
	}
	if stats.Accuracy >= 0.9 {
		bonus += cfg.BaseScore / 2
	}
	if stats.TimeLimit > 0 && stats.TimeRemaining > 0 {
		ratio := float64(stats.TimeRemaining) / float64(stats.TimeLimit)
		bonus += int(ratio * float64(cfg.BaseScore))
	}
	return bonus
}
