package hints

import (
	"testing"

	"github.com/abhisek/lexmatch/internal/content"
	"github.com/abhisek/lexmatch/internal/diagnosis"
)

func baseRequest() *Request {
	return &Request{
		Game: GameContext{
			GameMode:      "match",
			Difficulty:    "",
			TimeRemaining: 120,
			CurrentStreak: 2,
			TotalAttempts: 6,
		},
		CurrentItems: []content.Item{
			{ID: "i1", Kind: content.KindText, Content: "apple"},
			{ID: "i2", Kind: content.KindText, Content: "banana"},
		},
	}
}

func TestGenerate_FirstHintIsSubtleDefault(t *testing.T) {
	s := NewSystem()
	r := baseRequest()

	h := s.Generate(r)
	if h == nil {
		t.Fatal("expected a hint")
	}
	if h.Level != LevelSubtle {
		t.Errorf("Level = %q, want subtle", h.Level)
	}
	if h.Message == "" {
		t.Error("expected non-empty message")
	}
}

func TestGenerate_DefaultLevelEscalatesMonotonically(t *testing.T) {
	s := NewSystem()
	order := map[Level]int{LevelSubtle: 0, LevelModerate: 1, LevelStrong: 2, LevelDirect: 3}

	prev := -1
	for used := 0; used < 6; used++ {
		r := baseRequest()
		r.Game.HintsUsed = used
		h := s.Generate(r)
		if got := order[h.Level]; got < prev {
			t.Errorf("hintsUsed=%d: level %q regressed below previous", used, h.Level)
		} else {
			prev = got
		}
	}
	r := baseRequest()
	r.Game.HintsUsed = 5
	if h := s.Generate(r); h.Level != LevelDirect {
		t.Errorf("Level = %q at hintsUsed=5, want direct", h.Level)
	}
}

func TestGenerate_ErrorPatternWinsOverAll(t *testing.T) {
	s := NewSystem()
	r := baseRequest()
	r.Game.TimeRemaining = 20 // time-pressure would also apply
	r.Profile.ErrorHistory = make([]*diagnosis.Record, 4)
	r.Profile.DominantErrorTypes = []diagnosis.ErrorType{diagnosis.ErrorVisualConfusion}

	h := s.Generate(r)
	if h.Strategy != "error-pattern-guided" {
		t.Errorf("Strategy = %q, want error-pattern-guided", h.Strategy)
	}
	if h.Kind != KindVisual {
		t.Errorf("Kind = %q, want visual", h.Kind)
	}
}

func TestGenerate_TimePressure_UrgentIsDirect(t *testing.T) {
	s := NewSystem()

	r := baseRequest()
	r.Game.TimeRemaining = 20
	h := s.Generate(r)
	if h.Strategy != "time-pressure-relief" || h.Level != LevelStrong {
		t.Errorf("got (%q, %q), want (time-pressure-relief, strong)", h.Strategy, h.Level)
	}

	r = baseRequest()
	r.Game.TimeRemaining = 5
	h = s.Generate(r)
	if h.Level != LevelDirect || h.Kind != KindElimination {
		t.Errorf("got (%q, %q), want (direct, elimination) in final seconds", h.Level, h.Kind)
	}
}

func TestGenerate_StreakBreaker(t *testing.T) {
	s := NewSystem()
	r := baseRequest()
	r.Game.CurrentStreak = 0
	r.Game.TotalAttempts = 3

	h := s.Generate(r)
	if h.Strategy != "streak-breaker" {
		t.Errorf("Strategy = %q, want streak-breaker", h.Strategy)
	}
}

func TestGenerate_DifficultyAdaptive(t *testing.T) {
	cases := []struct {
		difficulty string
		level      Level
		kind       Kind
	}{
		{"easy", LevelSubtle, KindVisual},
		{"medium", LevelModerate, KindTextual},
		{"hard", LevelStrong, KindContextual},
		{"expert", LevelModerate, KindElimination},
	}
	for _, tc := range cases {
		s := NewSystem()
		r := baseRequest()
		r.Game.Difficulty = tc.difficulty
		h := s.Generate(r)
		if h.Strategy != "difficulty-adaptive" {
			t.Errorf("%s: Strategy = %q, want difficulty-adaptive", tc.difficulty, h.Strategy)
		}
		if h.Level != tc.level || h.Kind != tc.kind {
			t.Errorf("%s: got (%q, %q), want (%q, %q)", tc.difficulty, h.Level, h.Kind, tc.level, tc.kind)
		}
	}
}

func TestGenerate_HistoryBounded(t *testing.T) {
	s := NewSystem()
	for i := 0; i < maxHistory+1; i++ {
		s.Generate(baseRequest())
	}
	if got := len(s.History()); got != keepHistory {
		t.Errorf("history length = %d, want %d after overflow", got, keepHistory)
	}
}

func TestEvaluateEffectiveness_RunningRate(t *testing.T) {
	s := NewSystem()
	h := s.Generate(baseRequest())

	s.EvaluateEffectiveness(h.ID, true)
	s.EvaluateEffectiveness(h.ID, true)
	s.EvaluateEffectiveness(h.ID, false)

	retained := s.History()[0]
	if retained.UsageCount != 3 {
		t.Errorf("UsageCount = %d, want 3", retained.UsageCount)
	}
	want := 2.0 / 3.0
	if diff := retained.SuccessRate - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("SuccessRate = %v, want %v", retained.SuccessRate, want)
	}

	// Unknown ids are ignored.
	s.EvaluateEffectiveness("nope", true)
}

func TestStats_CountsAndAverages(t *testing.T) {
	s := NewSystem()
	h1 := s.Generate(baseRequest()) // subtle textual default
	r := baseRequest()
	r.Game.TimeRemaining = 5
	s.Generate(r) // direct elimination

	s.EvaluateEffectiveness(h1.ID, true)

	stats := s.Stats()
	if stats.TotalHints != 2 {
		t.Errorf("TotalHints = %d, want 2", stats.TotalHints)
	}
	if stats.ByLevel[LevelSubtle] != 1 || stats.ByLevel[LevelDirect] != 1 {
		t.Errorf("ByLevel = %v, want one subtle and one direct", stats.ByLevel)
	}
	if stats.AverageEffectiveness != 1.0 {
		t.Errorf("AverageEffectiveness = %v, want 1.0", stats.AverageEffectiveness)
	}
	if len(stats.RecentHints) != 2 {
		t.Errorf("RecentHints = %d, want 2", len(stats.RecentHints))
	}
}
