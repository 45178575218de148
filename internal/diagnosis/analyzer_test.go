package diagnosis

import (
	"testing"
	"time"
)

func lapseInput(attempts int) *ClassifyInput {
	return &ClassifyInput{
		Left:    textItem("a", "qux"),
		Right:   textItem("b", "wiz"),
		Context: Context{GameMode: "match", Difficulty: "medium", TotalAttempts: attempts, TimeRemaining: 120},
	}
}

func TestRecordError_AppendsAndClassifies(t *testing.T) {
	a := NewAnalyzer()
	rec := a.RecordError(lapseInput(4), 3000)

	if rec.ErrorType != ErrorMemoryLapse {
		t.Errorf("ErrorType = %q, want %q", rec.ErrorType, ErrorMemoryLapse)
	}
	if rec.ID == "" {
		t.Error("expected non-empty record id")
	}
	if len(a.History()) != 1 {
		t.Errorf("history length = %d, want 1", len(a.History()))
	}
}

func TestPattern_FrequencyAndAverage(t *testing.T) {
	a := NewAnalyzer()
	a.RecordError(lapseInput(1), 2000)
	a.RecordError(lapseInput(2), 4000)

	patterns := a.Patterns()
	if len(patterns) != 1 {
		t.Fatalf("patterns = %d, want 1", len(patterns))
	}
	p := patterns[0]
	if p.Frequency != 2 {
		t.Errorf("Frequency = %d, want 2", p.Frequency)
	}
	if p.AverageResponseTime != 3000 {
		t.Errorf("AverageResponseTime = %v, want 3000", p.AverageResponseTime)
	}
	if !containsString(p.Contexts, "match-medium") {
		t.Errorf("Contexts = %v, want to include match-medium", p.Contexts)
	}
}

func TestPattern_SeverityThresholds(t *testing.T) {
	a := NewAnalyzer()
	for i := 0; i < 4; i++ {
		a.RecordError(lapseInput(i), 3000)
	}
	if sev := a.Patterns()[0].Severity; sev != SeverityLow {
		t.Errorf("severity after 4 = %q, want low", sev)
	}
	a.RecordError(lapseInput(5), 3000)
	if sev := a.Patterns()[0].Severity; sev != SeverityMedium {
		t.Errorf("severity after 5 = %q, want medium", sev)
	}
	for i := 0; i < 5; i++ {
		a.RecordError(lapseInput(6+i), 3000)
	}
	if sev := a.Patterns()[0].Severity; sev != SeverityHigh {
		t.Errorf("severity after 10 = %q, want high", sev)
	}
}

func TestPattern_TrendWorsening(t *testing.T) {
	a := NewAnalyzer()
	// First half fast, second half much slower.
	for i := 0; i < 5; i++ {
		a.RecordError(lapseInput(i), 2000)
	}
	for i := 0; i < 5; i++ {
		a.RecordError(lapseInput(5+i), 6000)
	}
	if trend := a.Patterns()[0].Trend; trend != TrendWorsening {
		t.Errorf("trend = %q, want worsening", trend)
	}
}

func TestPattern_TrendImproving(t *testing.T) {
	a := NewAnalyzer()
	for i := 0; i < 5; i++ {
		a.RecordError(lapseInput(i), 6000)
	}
	for i := 0; i < 5; i++ {
		a.RecordError(lapseInput(5+i), 2000)
	}
	if trend := a.Patterns()[0].Trend; trend != TrendImproving {
		t.Errorf("trend = %q, want improving", trend)
	}
}

func TestPattern_TrendStableWithFewSamples(t *testing.T) {
	a := NewAnalyzer()
	for i := 0; i < 4; i++ {
		a.RecordError(lapseInput(i), 1000*(i+1))
	}
	if trend := a.Patterns()[0].Trend; trend != TrendStable {
		t.Errorf("trend = %q, want stable under 5 samples", trend)
	}
}

func TestAnalyzePatterns_EmptyHistory(t *testing.T) {
	a := NewAnalyzer()
	result := a.AnalyzePatterns()
	if result.TotalErrors != 0 {
		t.Errorf("TotalErrors = %d, want 0", result.TotalErrors)
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected the no-data fallback recommendation")
	}
}

func TestAnalyzePatterns_DominantTypesAndGaps(t *testing.T) {
	a := NewAnalyzer()

	// 12 slow-trending memory lapses: high severity, worsening.
	for i := 0; i < 6; i++ {
		a.RecordError(lapseInput(i), 2000)
	}
	for i := 0; i < 6; i++ {
		a.RecordError(lapseInput(6+i), 8000)
	}
	// 2 semantic errors: a strength.
	semIn := &ClassifyInput{
		Left:    textItem("a", "cat"),
		Right:   textItem("b", "pet"),
		Context: Context{GameMode: "match", Difficulty: "easy", TotalAttempts: 9, TimeRemaining: 100},
	}
	a.RecordError(semIn, 3000)
	a.RecordError(semIn, 3000)

	result := a.AnalyzePatterns()
	if result.TotalErrors != 14 {
		t.Errorf("TotalErrors = %d, want 14", result.TotalErrors)
	}
	if len(result.DominantErrorTypes) == 0 || result.DominantErrorTypes[0] != ErrorMemoryLapse {
		t.Errorf("DominantErrorTypes = %v, want memory first", result.DominantErrorTypes)
	}
	if len(result.LearningGaps) != 1 || result.LearningGaps[0] != ErrorMemoryLapse {
		t.Errorf("LearningGaps = %v, want [memory]", result.LearningGaps)
	}
	if len(result.Strengths) != 1 || result.Strengths[0] != ErrorSemantic {
		t.Errorf("Strengths = %v, want [semantic]", result.Strengths)
	}
	if len(result.Insights) == 0 {
		t.Error("expected insights for a populated history")
	}
}

func TestAnalyzePatterns_RecommendationsDeduplicated(t *testing.T) {
	a := NewAnalyzer()
	for i := 0; i < 3; i++ {
		a.RecordError(lapseInput(i), 3000)
	}
	result := a.AnalyzePatterns()
	seen := make(map[string]int)
	for _, r := range result.Recommendations {
		seen[r]++
		if seen[r] > 1 {
			t.Errorf("duplicate recommendation: %q", r)
		}
	}
}

func TestClear_ResetsEverything(t *testing.T) {
	a := NewAnalyzer()
	a.RecordError(lapseInput(1), 3000)
	a.Clear()
	if len(a.History()) != 0 || len(a.Patterns()) != 0 {
		t.Error("expected empty history and patterns after Clear")
	}
}

func TestRecordError_TimestampsFromClock(t *testing.T) {
	a := NewAnalyzer()
	fixed := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	a.SetClock(func() time.Time { return fixed })
	rec := a.RecordError(lapseInput(1), 3000)
	if !rec.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, fixed)
	}
}
