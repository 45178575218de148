package adaptive

import (
	"testing"
	"time"
)

func lightLoad() CognitiveLoad {
	return CognitiveLoad{
		ResponseTime:   900,
		ErrorRate:      0.05,
		AttentionLevel: 0.95,
	}
}

func heavyLoad() CognitiveLoad {
	return CognitiveLoad{
		ResponseTime:     6000,
		ErrorRate:        0.8,
		HesitationCount:  9,
		RetryCount:       5,
		AttentionLevel:   0.1,
		FatigueLevel:     0.9,
		FrustrationLevel: 0.9,
	}
}

func strongPerformance() Performance {
	return Performance{
		Accuracy: 0.95, Speed: 0.9, Consistency: 0.9,
		Improvement: 0.8, Retention: 0.95, Engagement: 1, Confidence: 0.95,
	}
}

func weakPerformance() Performance {
	return Performance{
		Accuracy: 0.3, Speed: 0.3, Consistency: 0.4,
		Improvement: 0.4, Retention: 0.3, Engagement: 0, Confidence: 0.3,
	}
}

func TestAnalyze_HighLoadDecreases(t *testing.T) {
	c := NewController(StrategyAdaptive, nil)
	adj := c.Analyze(LearnerState{
		CurrentDifficulty: 0.6,
		Load:              heavyLoad(),
		Performance:       weakPerformance(),
		Personal:          NeutralFactors(),
	})
	if adj.Type != AdjustDecrease {
		t.Fatalf("Type = %q, want decrease", adj.Type)
	}
	if adj.RecommendedDifficulty >= 0.6 {
		t.Errorf("RecommendedDifficulty = %v, want below 0.6", adj.RecommendedDifficulty)
	}
	if adj.RecommendedDifficulty < 0.1 {
		t.Errorf("RecommendedDifficulty = %v, below floor 0.1", adj.RecommendedDifficulty)
	}
}

func TestAnalyze_StrongPerformanceLightLoadIncreases(t *testing.T) {
	c := NewController(StrategyAdaptive, nil)
	adj := c.Analyze(LearnerState{
		CurrentDifficulty: 0.5,
		Load:              lightLoad(),
		Performance:       strongPerformance(),
		Personal:          NeutralFactors(),
	})
	if adj.Type != AdjustIncrease {
		t.Fatalf("Type = %q, want increase", adj.Type)
	}
	if adj.RecommendedDifficulty <= 0.5 {
		t.Errorf("RecommendedDifficulty = %v, want above 0.5", adj.RecommendedDifficulty)
	}
}

func TestAnalyze_MiddlingStateMaintains(t *testing.T) {
	c := NewController(StrategyAdaptive, nil)
	adj := c.Analyze(LearnerState{
		CurrentDifficulty: 0.5,
		Load:              CognitiveLoad{ResponseTime: 2500, ErrorRate: 0.3, AttentionLevel: 0.7, FatigueLevel: 0.3},
		Performance:       Performance{Accuracy: 0.7, Speed: 0.6, Consistency: 0.6, Improvement: 0.5, Retention: 0.7, Engagement: 0.5, Confidence: 0.7},
		Personal:          NeutralFactors(),
	})
	if adj.Type != AdjustMaintain {
		t.Errorf("Type = %q, want maintain", adj.Type)
	}
	if adj.RecommendedDifficulty != 0.5 {
		t.Errorf("RecommendedDifficulty = %v, want unchanged 0.5", adj.RecommendedDifficulty)
	}
}

func TestAnalyze_ConservativeMovesLessThanAggressive(t *testing.T) {
	state := LearnerState{
		CurrentDifficulty: 0.6,
		Load:              heavyLoad(),
		Performance:       weakPerformance(),
		Personal:          NeutralFactors(),
	}
	conservative := NewController(StrategyConservative, nil).Analyze(state)
	aggressive := NewController(StrategyAggressive, nil).Analyze(state)

	consDrop := state.CurrentDifficulty - conservative.RecommendedDifficulty
	aggrDrop := state.CurrentDifficulty - aggressive.RecommendedDifficulty
	if consDrop >= aggrDrop {
		t.Errorf("conservative drop %v, aggressive drop %v; want conservative smaller", consDrop, aggrDrop)
	}
}

func TestAnalyze_PoorPersonalStateHalvesIncrease(t *testing.T) {
	state := LearnerState{
		CurrentDifficulty: 0.5,
		Load:              lightLoad(),
		Performance:       strongPerformance(),
	}
	state.Personal = NeutralFactors()
	normal := NewController(StrategyAdaptive, nil).Analyze(state)

	state.Personal = PersonalFactors{EnergyLevel: 0.2, MotivationLevel: 0.2, StressLevel: 0.9, PriorKnowledge: 0.2}
	tired := NewController(StrategyAdaptive, nil).Analyze(state)

	if tired.Type != AdjustIncrease {
		t.Fatalf("Type = %q, want increase even when tired", tired.Type)
	}
	if tired.Timeline != TimelineGradual {
		t.Errorf("Timeline = %q, want gradual", tired.Timeline)
	}
	normalDelta := normal.RecommendedDifficulty - 0.5
	tiredDelta := tired.RecommendedDifficulty - 0.5
	if tiredDelta >= normalDelta {
		t.Errorf("tired delta %v, normal delta %v; want tired smaller", tiredDelta, normalDelta)
	}
}

func TestCommit_MaintainLeavesScoreAlone(t *testing.T) {
	c := NewController(StrategyAdaptive, nil)
	c.Commit(maintainAdjustment(0.9), time.Now())
	if c.Score() != 0.5 {
		t.Errorf("Score = %v, want untouched 0.5", c.Score())
	}
	if c.AdjustmentCount() != 0 {
		t.Errorf("AdjustmentCount = %d, want 0", c.AdjustmentCount())
	}
}

func TestCommit_UpdatesScoreAndBookkeeping(t *testing.T) {
	c := NewController(StrategyAdaptive, nil)
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	c.Commit(Adjustment{Type: AdjustIncrease, RecommendedDifficulty: 0.8}, now)

	if c.Score() != 0.8 {
		t.Errorf("Score = %v, want 0.8", c.Score())
	}
	if c.AdjustmentCount() != 1 {
		t.Errorf("AdjustmentCount = %d, want 1", c.AdjustmentCount())
	}
	if !c.LastAdjustedAt().Equal(now) {
		t.Errorf("LastAdjustedAt = %v, want %v", c.LastAdjustedAt(), now)
	}
}

func TestLevelFor_Bands(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{0.0, LevelEasy},
		{0.3, LevelEasy},
		{0.31, LevelMedium},
		{0.6, LevelMedium},
		{0.61, LevelHard},
		{0.85, LevelHard},
		{0.86, LevelExpert},
		{1.0, LevelExpert},
	}
	for _, tc := range cases {
		if got := LevelFor(tc.score); got != tc.want {
			t.Errorf("LevelFor(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestParams_BoundsAndHintCutoff(t *testing.T) {
	c := NewController(StrategyAdaptive, nil)

	c.Commit(Adjustment{Type: AdjustIncrease, RecommendedDifficulty: 1.0}, time.Now())
	p := c.Params(18, 90)
	if p.PairCount > maxPairCount {
		t.Errorf("PairCount = %d, exceeds %d", p.PairCount, maxPairCount)
	}
	if p.TimeLimitSec < minTimeLimit {
		t.Errorf("TimeLimitSec = %d, below floor %d", p.TimeLimitSec, minTimeLimit)
	}
	if p.HintsEnabled {
		t.Error("hints should be disabled at difficulty 1.0")
	}
	if p.PenaltyTimeSec != 15 {
		t.Errorf("PenaltyTimeSec = %d, want 15 at max difficulty", p.PenaltyTimeSec)
	}

	c.Commit(Adjustment{Type: AdjustDecrease, RecommendedDifficulty: 0.0}, time.Now())
	p = c.Params(5, 300)
	if p.PairCount < minPairCount {
		t.Errorf("PairCount = %d, below floor %d", p.PairCount, minPairCount)
	}
	if !p.HintsEnabled {
		t.Error("hints should be enabled at difficulty 0")
	}
	if p.PenaltyTimeSec != 5 {
		t.Errorf("PenaltyTimeSec = %d, want 5 at min difficulty", p.PenaltyTimeSec)
	}
	if p.Level != LevelEasy {
		t.Errorf("Level = %q, want easy", p.Level)
	}
}

func TestParams_UntimedStaysUntimed(t *testing.T) {
	c := NewController(StrategyAdaptive, nil)
	p := c.Params(8, 0)
	if p.TimeLimitSec != 0 {
		t.Errorf("TimeLimitSec = %d, want 0 for untimed base", p.TimeLimitSec)
	}
}

func TestTelemetry_LoadAndPerformance(t *testing.T) {
	start := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	tel := NewTelemetry(start)

	at := start
	times := []int{1200, 1100, 6000, 1300, 7000, 1250}
	correct := []bool{true, true, false, true, false, true}
	for i := range times {
		at = at.Add(10 * time.Second)
		tel.RecordAttempt(at, times[i], correct[i], false)
	}

	load := tel.Load(start.Add(5 * time.Minute))
	if load.HesitationCount != 2 {
		t.Errorf("HesitationCount = %d, want 2 (responses over 5s)", load.HesitationCount)
	}
	wantErrRate := 2.0 / 6.0
	if diff := load.ErrorRate - wantErrRate; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ErrorRate = %v, want %v", load.ErrorRate, wantErrRate)
	}
	if load.FatigueLevel != 0.5 {
		t.Errorf("FatigueLevel = %v, want 0.5 at 5 of 10 minutes", load.FatigueLevel)
	}

	perf := tel.PerformanceMetrics()
	if diff := perf.Accuracy - 4.0/6.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Accuracy = %v, want %v", perf.Accuracy, 4.0/6.0)
	}
	if perf.Speed <= 0 || perf.Speed >= 1 {
		t.Errorf("Speed = %v, want inside (0,1)", perf.Speed)
	}
}

func TestTelemetry_FrustrationFromRecentErrors(t *testing.T) {
	start := time.Now()
	tel := NewTelemetry(start)
	for i := 0; i < 5; i++ {
		tel.RecordAttempt(start, 2000, true, false)
	}
	for i := 0; i < 5; i++ {
		tel.RecordAttempt(start, 2000, false, false)
	}
	load := tel.Load(start)
	if load.FrustrationLevel != 1.0 {
		t.Errorf("FrustrationLevel = %v, want 1.0 after 5 recent misses", load.FrustrationLevel)
	}
}

func TestTelemetry_EmptyWindow(t *testing.T) {
	tel := NewTelemetry(time.Now())
	load := tel.Load(time.Now())
	if load.ErrorRate != 0 || load.AttentionLevel != 1 {
		t.Errorf("empty window load = %+v, want zero error rate and full attention", load)
	}
	perf := tel.PerformanceMetrics()
	if perf.Accuracy != 0 {
		t.Errorf("empty window accuracy = %v, want 0", perf.Accuracy)
	}
}
