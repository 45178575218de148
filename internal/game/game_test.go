package game

import (
	"errors"
	"testing"
	"time"

	"github.com/abhisek/lexmatch/internal/adaptive"
	"github.com/abhisek/lexmatch/internal/content"
	"github.com/abhisek/lexmatch/internal/diagnosis"
	"github.com/abhisek/lexmatch/internal/hints"
	"github.com/abhisek/lexmatch/internal/memcurve"
	"github.com/abhisek/lexmatch/internal/scoring"
)

var gameBase = time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

type gameEnv struct {
	mgr      *Manager
	tracker  *memcurve.Tracker
	analyzer *diagnosis.Analyzer
	ctrl     *adaptive.Controller
	clock    time.Time
}

func newGameEnv() *gameEnv {
	env := &gameEnv{clock: gameBase}
	now := func() time.Time { return env.clock }

	env.tracker = memcurve.NewTracker()
	env.tracker.SetClock(now)
	env.analyzer = diagnosis.NewAnalyzer()
	env.analyzer.SetClock(now)
	hintSys := hints.NewSystem()
	hintSys.SetClock(now)
	env.ctrl = adaptive.NewController(adaptive.StrategyModerate, nil)

	env.mgr = NewManager(Components{
		Tracker:  env.tracker,
		Analyzer: env.analyzer,
		Hints:    hintSys,
		Adaptive: env.ctrl,
	}, nil, nil)
	env.mgr.SetClock(now)
	env.mgr.SetResolveDelay(0)
	return env
}

func fourPairs() []content.Pair {
	words := [][2]string{{"sun", "soleil"}, {"moon", "lune"}, {"star", "etoile"}, {"sky", "ciel"}}
	pairs := make([]content.Pair, 0, len(words))
	for i, w := range words {
		pairs = append(pairs, content.Pair{
			ID:    "p" + string(rune('1'+i)),
			Left:  content.Item{ID: "l" + string(rune('1'+i)), Kind: content.KindText, Content: w[0]},
			Right: content.Item{ID: "r" + string(rune('1'+i)), Kind: content.KindText, Content: w[1]},
		})
	}
	return pairs
}

func baseConfig() Config {
	return Config{
		Mode:       ModeTextText,
		Difficulty: "medium",
		PairCount:  4,
		AllowHints: true,
		Scoring: scoring.Config{
			Mode:             scoring.ModeStandard,
			BaseScore:        100,
			StreakMultiplier: 1.1,
			TimeBonus:        true,
		},
	}
}

func (env *gameEnv) start(t *testing.T, cfg Config) string {
	t.Helper()
	id, err := env.mgr.Start("amy", cfg, content.NewStaticSupplier(fourPairs()))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return id
}

// extend invokes one adaptive time extension under the session lock.
func (env *gameEnv) extend() {
	env.mgr.mu.Lock()
	env.mgr.extendTimeLocked()
	env.mgr.mu.Unlock()
}

func (env *gameEnv) pick(t *testing.T, leftID, rightID string) {
	t.Helper()
	if !env.mgr.SelectItem(leftID) {
		t.Fatalf("SelectItem(%q) rejected", leftID)
	}
	if !env.mgr.SelectItem(rightID) {
		t.Fatalf("SelectItem(%q) rejected", rightID)
	}
}

func TestStartValidation(t *testing.T) {
	env := newGameEnv()
	supplier := content.NewStaticSupplier(fourPairs())

	tests := []struct {
		name string
		mut  func(*Config)
		want error
	}{
		{"pair count too low", func(c *Config) { c.PairCount = 3 }, ErrPairCountOutOfRange},
		{"pair count too high", func(c *Config) { c.PairCount = 21 }, ErrPairCountOutOfRange},
		{"time limit too short", func(c *Config) { c.TimeLimitSec = 10 }, ErrTimeLimitTooShort},
	}
	for _, tt := range tests {
		cfg := baseConfig()
		tt.mut(&cfg)
		if _, err := env.mgr.Start("amy", cfg, supplier); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}

	cfg := baseConfig()
	cfg.Scoring.Mode = "bogus"
	if _, err := env.mgr.Start("amy", cfg, supplier); err == nil {
		t.Error("unknown scoring mode accepted")
	}

	if _, err := env.mgr.Start("amy", baseConfig(), content.NewStaticSupplier(nil)); !errors.Is(err, ErrNoPairs) {
		t.Errorf("empty supplier: err = %v, want %v", err, ErrNoPairs)
	}

	broken := fourPairs()
	broken[2].Right = content.Item{}
	if _, err := env.mgr.Start("amy", baseConfig(), content.NewStaticSupplier(broken)); !errors.Is(err, ErrIncompletePair) {
		t.Errorf("incomplete pair: err = %v, want %v", err, ErrIncompletePair)
	}

	if env.mgr.CurrentState() != nil {
		t.Error("failed starts must not create session state")
	}
}

func TestAllCorrectFastRun(t *testing.T) {
	env := newGameEnv()
	var completed []Result
	env.mgr.OnSessionComplete(func(r Result) { completed = append(completed, r) })

	env.start(t, baseConfig())
	for i := 1; i <= 4; i++ {
		env.pick(t, "l"+string(rune('0'+i)), "r"+string(rune('0'+i)))
	}

	if len(completed) != 1 {
		t.Fatalf("complete events = %d, want 1", len(completed))
	}
	res := completed[0]
	if res.Score <= 400 {
		t.Errorf("score = %d, want > 400 from streak bonuses", res.Score)
	}
	if res.Score != 460 {
		t.Errorf("score = %d, want 460", res.Score)
	}
	if res.TotalAttempts != 4 || res.CorrectMatches != 4 {
		t.Errorf("attempts/correct = %d/%d, want 4/4", res.TotalAttempts, res.CorrectMatches)
	}
	if res.Accuracy != 1.0 {
		t.Errorf("accuracy = %v, want 1.0", res.Accuracy)
	}
	if res.BestStreak != 4 {
		t.Errorf("best streak = %d, want 4", res.BestStreak)
	}
	if res.MemoryRetention != 100 {
		t.Errorf("memory retention = %v, want 100", res.MemoryRetention)
	}
	for i := 1; i <= 4; i++ {
		if env.tracker.Get("amy", "p"+string(rune('0'+i))) == nil {
			t.Errorf("pair p%d missing from the memory tracker", i)
		}
	}
	if env.mgr.End() != nil {
		t.Error("End after auto-completion should return nil")
	}
}

func TestEndBonusesApplied(t *testing.T) {
	env := newGameEnv()
	cfg := baseConfig()
	cfg.Scoring.EndBonuses = true

	var res *Result
	env.mgr.OnSessionComplete(func(r Result) { res = &r })
	env.start(t, cfg)
	for i := 1; i <= 4; i++ {
		env.pick(t, "l"+string(rune('0'+i)), "r"+string(rune('0'+i)))
	}

	// 460 from matches plus the perfect-game and accuracy bonuses.
	if res == nil || res.Score != 460+100+50 {
		t.Fatalf("score = %+v, want 610", res)
	}
}

func TestIncorrectThenCorrect(t *testing.T) {
	env := newGameEnv()
	var outcomes []bool
	env.mgr.OnMatchResolved(func(_ content.Pair, correct bool) { outcomes = append(outcomes, correct) })

	env.start(t, baseConfig())
	env.pick(t, "l1", "r2")
	env.pick(t, "l1", "r1")

	s := env.mgr.CurrentState()
	if s.Attempts != 2 || s.CorrectMatches != 1 {
		t.Errorf("attempts/correct = %d/%d, want 2/1", s.Attempts, s.CorrectMatches)
	}
	if len(outcomes) != 2 || outcomes[0] || !outcomes[1] {
		t.Errorf("match outcomes = %v, want [false true]", outcomes)
	}
	if s.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1 after the recovery match", s.CurrentStreak)
	}
	if got := len(env.analyzer.History()); got != 1 {
		t.Errorf("error records = %d, want 1", got)
	}
	// 0 - 10 floored at 0, then 100 for the streak-1 match.
	if s.Score != 100 {
		t.Errorf("score = %d, want 100", s.Score)
	}
}

func TestFirstHintIsSubtle(t *testing.T) {
	env := newGameEnv()
	cfg := baseConfig()
	cfg.Difficulty = ""
	env.start(t, cfg)

	h := env.mgr.RequestHint()
	if h == nil {
		t.Fatal("hint is nil")
	}
	if h.Level != hints.LevelSubtle {
		t.Errorf("hint level = %q, want %q", h.Level, hints.LevelSubtle)
	}
	if h.Message == "" {
		t.Error("hint message is empty")
	}
	s := env.mgr.CurrentState()
	if s.HintsUsed != 1 {
		t.Errorf("hints used = %d, want 1", s.HintsUsed)
	}
	if s.Score != 0 {
		t.Errorf("score = %d, hint penalty must floor at 0", s.Score)
	}
}

func TestHintDisallowed(t *testing.T) {
	env := newGameEnv()
	cfg := baseConfig()
	cfg.AllowHints = false
	env.start(t, cfg)
	if env.mgr.RequestHint() != nil {
		t.Error("hint granted with hints disallowed")
	}
}

func TestSelectionGuards(t *testing.T) {
	env := newGameEnv()
	env.start(t, baseConfig())

	if env.mgr.SelectItem("nope") {
		t.Error("unknown item accepted")
	}
	if !env.mgr.SelectItem("l1") {
		t.Fatal("first selection rejected")
	}
	if env.mgr.SelectItem("l1") {
		t.Error("double selection of the same item accepted")
	}

	env.mgr.SetResolveDelay(time.Hour)
	if !env.mgr.SelectItem("r1") {
		t.Fatal("second selection rejected")
	}
	if env.mgr.SelectItem("l2") {
		t.Error("selection accepted while a resolution is pending")
	}
}

func TestMatchedItemsCannotBeReselected(t *testing.T) {
	env := newGameEnv()
	env.start(t, baseConfig())
	env.pick(t, "l1", "r1")
	if env.mgr.SelectItem("l1") || env.mgr.SelectItem("r1") {
		t.Error("matched items accepted for selection")
	}
}

func TestPauseResumePreservesTime(t *testing.T) {
	env := newGameEnv()
	cfg := baseConfig()
	cfg.TimeLimitSec = 60
	env.start(t, cfg)

	env.mgr.Pause()
	s := env.mgr.CurrentState()
	if s.Status != StatusPaused || s.TimeRemaining != 60 {
		t.Fatalf("paused state = %q/%d, want paused/60", s.Status, s.TimeRemaining)
	}
	if env.mgr.SelectItem("l1") {
		t.Error("selection accepted while paused")
	}

	env.mgr.Resume()
	s = env.mgr.CurrentState()
	if s.Status != StatusActive || s.TimeRemaining != 60 {
		t.Fatalf("resumed state = %q/%d, want active/60", s.Status, s.TimeRemaining)
	}
	if env.mgr.End() == nil {
		t.Error("End returned nil for an active session")
	}
}

func TestPauseDuringResolveWindowStillResolves(t *testing.T) {
	env := newGameEnv()
	env.mgr.SetResolveDelay(time.Hour)
	env.start(t, baseConfig())

	if !env.mgr.SelectItem("l1") || !env.mgr.SelectItem("r1") {
		t.Fatal("selections rejected")
	}
	env.mgr.Pause()
	// The scheduled resolution fires while the session is paused.
	env.mgr.resolvePending()

	s := env.mgr.CurrentState()
	if s.Status != StatusPaused {
		t.Fatalf("status = %q, want paused", s.Status)
	}
	if len(s.SelectedItems) != 0 {
		t.Fatalf("selected items = %v, want the pair released", s.SelectedItems)
	}
	if s.Attempts != 1 || s.CorrectMatches != 1 || len(s.MatchedPairs) != 1 {
		t.Fatalf("attempts/correct/matched = %d/%d/%d, want 1/1/1",
			s.Attempts, s.CorrectMatches, len(s.MatchedPairs))
	}

	// The session stays playable after resuming.
	env.mgr.Resume()
	env.mgr.SetResolveDelay(0)
	env.pick(t, "l2", "r2")
	s = env.mgr.CurrentState()
	if s.CorrectMatches != 2 {
		t.Errorf("correct matches = %d, want 2 after resume", s.CorrectMatches)
	}
}

func TestPenaltyTimeDeduction(t *testing.T) {
	env := newGameEnv()
	cfg := baseConfig()
	cfg.TimeLimitSec = 60
	cfg.PenaltyTimeSec = 5
	env.start(t, cfg)

	env.pick(t, "l1", "r2")
	s := env.mgr.CurrentState()
	if s.TimeRemaining != 55 {
		t.Errorf("time remaining = %d, want 55 after the penalty", s.TimeRemaining)
	}
	env.mgr.End()
}

func TestTimeExtensionCapIsSilentNoOp(t *testing.T) {
	env := newGameEnv()
	cfg := baseConfig()
	cfg.TimeLimitSec = 60
	cfg.MaxExtensions = 1
	env.start(t, cfg)
	env.mgr.Pause()

	env.extend()
	env.extend()
	s := env.mgr.CurrentState()
	if s.TimeRemaining != 75 || s.ExtensionsUsed != 1 {
		t.Errorf("time/extensions = %d/%d, want 75/1 after hitting the cap", s.TimeRemaining, s.ExtensionsUsed)
	}
}

func TestTimeExtensionUntimedNoOp(t *testing.T) {
	env := newGameEnv()
	cfg := baseConfig()
	cfg.MaxExtensions = 3
	env.start(t, cfg)

	env.extend()
	s := env.mgr.CurrentState()
	if s.TimeRemaining != 0 || s.ExtensionsUsed != 0 {
		t.Errorf("time/extensions = %d/%d, want untimed session untouched", s.TimeRemaining, s.ExtensionsUsed)
	}
}

func TestAdaptiveDecreaseAfterStrugglingRun(t *testing.T) {
	env := newGameEnv()
	env.start(t, baseConfig())

	wrong := [][2]string{{"l1", "r2"}, {"l1", "r3"}, {"l1", "r4"}, {"l2", "r1"}, {"l2", "r3"}}
	for _, pair := range wrong {
		if !env.mgr.SelectItem(pair[0]) {
			t.Fatalf("SelectItem(%q) rejected", pair[0])
		}
		env.clock = env.clock.Add(6 * time.Second)
		if !env.mgr.SelectItem(pair[1]) {
			t.Fatalf("SelectItem(%q) rejected", pair[1])
		}
	}

	if env.ctrl.AdjustmentCount() != 1 {
		t.Fatalf("adjustment count = %d, want 1 after five attempts", env.ctrl.AdjustmentCount())
	}
	if env.ctrl.Score() >= 0.5 {
		t.Errorf("difficulty score = %v, want a decrease below 0.5", env.ctrl.Score())
	}
}

func TestEndEarly(t *testing.T) {
	env := newGameEnv()
	env.start(t, baseConfig())
	env.pick(t, "l1", "r1")

	res := env.mgr.End()
	if res == nil {
		t.Fatal("End returned nil")
	}
	if res.TotalAttempts != 1 || res.CorrectMatches != 1 {
		t.Errorf("attempts/correct = %d/%d, want 1/1", res.TotalAttempts, res.CorrectMatches)
	}
	if env.mgr.End() != nil {
		t.Error("second End should return nil")
	}
}
