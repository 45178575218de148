package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lexmatch/internal/adaptive"
	"github.com/abhisek/lexmatch/internal/content"
	"github.com/abhisek/lexmatch/internal/diagnosis"
	"github.com/abhisek/lexmatch/internal/hints"
	"github.com/abhisek/lexmatch/internal/memcurve"
	"github.com/abhisek/lexmatch/internal/scoring"
)

const (
	// resolveDelay keeps both selections visible before the match is
	// resolved.
	resolveDelay = 500 * time.Millisecond

	// adaptiveEvery and adaptiveMinGap rate-limit difficulty analysis.
	adaptiveEvery  = 5
	adaptiveMinGap = 30 * time.Second
)

// Components are the per-learner engines the orchestrator drives.
type Components struct {
	Tracker  *memcurve.Tracker
	Analyzer *diagnosis.Analyzer
	Hints    *hints.System
	Adaptive *adaptive.Controller
}

// HistoryWriter persists finished session results. Writes are best
// effort; failures are logged and never affect the session.
type HistoryWriter interface {
	AppendResult(learnerID string, res *Result) error
}

// Listener signatures for the three subscription points.
type (
	StateListener    func(State)
	MatchListener    func(pair content.Pair, correct bool)
	CompleteListener func(Result)
)

// Manager runs one match session at a time over a learner's component
// set. All mutation happens under one mutex; the countdown goroutine
// and the resolution callback re-acquire it before touching state.
type Manager struct {
	mu      sync.Mutex
	comps   Components
	history HistoryWriter
	log     *slog.Logger
	now     func() time.Time
	delay   time.Duration
	rng     *rand.Rand

	state          *State
	cfg            Config
	telemetry      *adaptive.Telemetry
	responseTimes  []int
	attemptedKeys  map[string]bool
	selectionAt    time.Time
	resolving      bool
	lastAdaptiveAt time.Time

	timerStop chan struct{}

	stateListeners    []StateListener
	matchListeners    []MatchListener
	completeListeners []CompleteListener
}

// NewManager wires an orchestrator over a learner's components. The
// history writer and logger may be nil.
func NewManager(comps Components, history HistoryWriter, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		comps:   comps,
		history: history,
		log:     log,
		now:     time.Now,
		delay:   resolveDelay,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetClock overrides the manager's time source.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// SetResolveDelay overrides the resolution delay. A non-positive delay
// resolves matches synchronously inside SelectItem.
func (m *Manager) SetResolveDelay(d time.Duration) {
	m.delay = d
}

// OnStateChanged registers a full-snapshot listener.
func (m *Manager) OnStateChanged(fn StateListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateListeners = append(m.stateListeners, fn)
}

// OnMatchResolved registers a per-resolution listener.
func (m *Manager) OnMatchResolved(fn MatchListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchListeners = append(m.matchListeners, fn)
}

// OnSessionComplete registers an end-of-session listener.
func (m *Manager) OnSessionComplete(fn CompleteListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeListeners = append(m.completeListeners, fn)
}

// Start validates config and content and opens a new session. Nothing
// is mutated on a validation failure.
func (m *Manager) Start(learnerID string, cfg Config, supplier content.Supplier) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	pairs, err := supplier.Pairs(cfg.PairCount)
	if err != nil {
		return "", fmt.Errorf("load pairs: %w", err)
	}
	if err := validatePairs(pairs); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.stopTimerLocked()
	if cfg.ShuffleItems {
		m.rng.Shuffle(len(pairs), func(i, j int) {
			pairs[i], pairs[j] = pairs[j], pairs[i]
		})
	}
	now := m.now()
	m.cfg = cfg
	m.state = &State{
		SessionID:     uuid.NewString(),
		LearnerID:     learnerID,
		Status:        StatusActive,
		StartedAt:     now,
		Pairs:         pairs,
		TimeRemaining: cfg.TimeLimitSec,
	}
	m.telemetry = adaptive.NewTelemetry(now)
	m.responseTimes = nil
	m.attemptedKeys = make(map[string]bool)
	m.resolving = false
	m.lastAdaptiveAt = time.Time{}
	if cfg.TimeLimitSec > 0 {
		m.startTimerLocked()
	}
	id := m.state.SessionID
	ev := m.eventsLocked()
	m.mu.Unlock()

	m.emit(ev)
	return id, nil
}

// SelectItem records one item selection. Returns false when there is
// no active session, the session is paused, a resolution is pending,
// or the item is already selected or matched.
func (m *Manager) SelectItem(itemID string) bool {
	m.mu.Lock()
	s := m.state
	if s == nil || s.Status != StatusActive || m.resolving {
		m.mu.Unlock()
		return false
	}
	if m.itemSelectedLocked(itemID) || m.itemMatchedLocked(itemID) || m.findItemLocked(itemID) == nil {
		m.mu.Unlock()
		return false
	}

	if len(s.SelectedItems) == 0 {
		m.selectionAt = m.now()
	}
	s.SelectedItems = append(s.SelectedItems, itemID)

	var ev events
	if len(s.SelectedItems) == 2 {
		m.resolving = true
		if m.delay <= 0 {
			ev = m.resolveLocked()
		} else {
			time.AfterFunc(m.delay, m.resolvePending)
			ev = m.eventsLocked()
		}
	} else {
		ev = m.eventsLocked()
	}
	m.mu.Unlock()

	m.emit(ev)
	return true
}

func (m *Manager) resolvePending() {
	m.mu.Lock()
	ev := m.resolveLocked()
	m.mu.Unlock()
	m.emit(ev)
}

// resolveLocked runs the full match-resolution transaction: memory
// model, error classifier, scoring, then adaptive control. A pause
// during the delay window does not cancel the resolution; the two
// selections still land, otherwise they would stay stuck in
// SelectedItems and the pair could never be matched.
func (m *Manager) resolveLocked() events {
	s := m.state
	m.resolving = false
	if s == nil || s.Status == StatusCompleted || len(s.SelectedItems) != 2 {
		return m.eventsLocked()
	}

	firstID, secondID := s.SelectedItems[0], s.SelectedItems[1]
	s.SelectedItems = nil

	now := m.now()
	responseMs := int(now.Sub(m.selectionAt).Milliseconds())
	pair := m.findPairLocked(firstID, secondID)
	retried := m.markAttemptLocked(firstID, secondID)
	s.Attempts++

	ev := events{}
	if pair != nil {
		m.handleCorrectLocked(pair, responseMs)
		ev.pair, ev.correct, ev.haveMatch = *pair, true, true
	} else {
		m.handleIncorrectLocked(firstID, secondID, responseMs)
		ev.pair = content.Pair{
			Left:  *m.findItemLocked(firstID),
			Right: *m.findItemLocked(secondID),
		}
		ev.haveMatch = true
	}
	m.responseTimes = append(m.responseTimes, responseMs)
	m.telemetry.RecordAttempt(now, responseMs, pair != nil, retried)

	m.maybeAdaptLocked(now)

	if len(s.MatchedPairs) == len(s.Pairs) {
		ev.result = m.completeLocked()
	}
	ev.state = ptr(s.snapshot())
	ev.stateLn, ev.matchLn, ev.completeLn = m.listenersLocked()
	return ev
}

func (m *Manager) handleCorrectLocked(pair *content.Pair, responseMs int) {
	s := m.state
	s.MatchedPairs = append(s.MatchedPairs, pair.ID)
	s.CorrectMatches++
	s.CurrentStreak++
	if s.CurrentStreak > s.BestStreak {
		s.BestStreak = s.CurrentStreak
	}

	delta := scoring.Delta(m.cfg.Scoring, true, m.matchStateLocked(responseMs))
	s.Score = scoring.Apply(s.Score, delta)
	if responseMs < 1500 {
		s.PerfectPairs++
	}

	perf := memcurve.Performance{Correct: true, ResponseTime: responseMs, Confidence: -1}
	if m.comps.Tracker.Get(s.LearnerID, pair.ID) == nil {
		m.comps.Tracker.RecordNewLearning(s.LearnerID, pair.ID, m.memoryContextLocked(), perf)
	} else {
		m.comps.Tracker.RecordReviewResult(s.LearnerID, pair.ID, perf)
	}
}

func (m *Manager) handleIncorrectLocked(firstID, secondID string, responseMs int) {
	s := m.state
	s.FailedAttempts++

	// Penalty reads the streak being lost, then the streak resets.
	penalty := scoring.Penalty(m.cfg.Scoring, m.matchStateLocked(responseMs))
	s.CurrentStreak = 0
	s.Score = scoring.Apply(s.Score, -penalty)
	if m.cfg.PenaltyTimeSec > 0 && s.TimeRemaining > 0 {
		s.TimeRemaining -= m.cfg.PenaltyTimeSec
		if s.TimeRemaining < 0 {
			s.TimeRemaining = 0
		}
	}

	left, right := m.findItemLocked(firstID), m.findItemLocked(secondID)
	m.comps.Analyzer.RecordError(&diagnosis.ClassifyInput{
		Left:        *left,
		Right:       *right,
		CorrectPair: m.pairOfItemLocked(firstID),
		Context: diagnosis.Context{
			GameMode:      string(m.cfg.Mode),
			Difficulty:    m.cfg.Difficulty,
			GEPTLevel:     m.cfg.GEPTLevel,
			TimeRemaining: s.TimeRemaining,
			CurrentStreak: s.CurrentStreak,
			TotalAttempts: s.Attempts,
		},
	}, responseMs)

	// A miss still weakens the memory of the pair the first item
	// belongs to, when that pair has been seen before.
	if p := m.pairOfItemLocked(firstID); p != nil {
		m.comps.Tracker.RecordReviewResult(s.LearnerID, p.ID,
			memcurve.Performance{ResponseTime: responseMs, Confidence: -1})
	}
}

// maybeAdaptLocked reruns difficulty analysis every few attempts,
// rate-limited in wall time. Failures are logged and ignored.
func (m *Manager) maybeAdaptLocked(now time.Time) {
	if m.telemetry.Attempts() == 0 || m.telemetry.Attempts()%adaptiveEvery != 0 {
		return
	}
	if !m.lastAdaptiveAt.IsZero() && now.Sub(m.lastAdaptiveAt) < adaptiveMinGap {
		return
	}
	m.lastAdaptiveAt = now

	defer func() {
		if r := recover(); r != nil {
			m.log.Error("difficulty analysis failed", "session", m.state.SessionID, "panic", r)
		}
	}()

	load := m.telemetry.Load(now)
	adj := m.comps.Adaptive.Analyze(adaptive.LearnerState{
		LearnerID:         m.state.LearnerID,
		SessionID:         m.state.SessionID,
		CurrentDifficulty: m.comps.Adaptive.Score(),
		Load:              load,
		Performance:       m.telemetry.PerformanceMetrics(),
		Personal:          adaptive.NeutralFactors(),
	})
	m.comps.Adaptive.Commit(adj, now)

	if adj.Type == adaptive.AdjustDecrease && adaptive.LoadScore(load) > adaptive.HighLoadThreshold {
		m.extendTimeLocked()
	}
}

// extendTimeLocked grants one adaptive time extension. At the
// configured cap, or in an untimed session, it does nothing.
func (m *Manager) extendTimeLocked() {
	if m.cfg.TimeLimitSec == 0 {
		return
	}
	if m.state.ExtensionsUsed >= m.cfg.MaxExtensions {
		return
	}
	m.state.TimeRemaining += m.cfg.extensionSec()
	m.state.ExtensionsUsed++
}

// RequestHint generates a hint for the current board and deducts the
// hint penalty. Returns nil when hints are disallowed or no session is
// active.
func (m *Manager) RequestHint() *hints.Hint {
	m.mu.Lock()
	s := m.state
	if s == nil || s.Status != StatusActive || !m.cfg.AllowHints {
		m.mu.Unlock()
		return nil
	}
	target := m.unmatchedPairLocked()
	if target == nil {
		m.mu.Unlock()
		return nil
	}

	analysis := m.comps.Analyzer.AnalyzePatterns()
	h := m.comps.Hints.Generate(&hints.Request{
		Profile: hints.LearnerProfile{
			ErrorHistory:       m.comps.Analyzer.History(),
			DominantErrorTypes: analysis.DominantErrorTypes,
		},
		Game: hints.GameContext{
			GameMode:      string(m.cfg.Mode),
			Difficulty:    m.cfg.Difficulty,
			GEPTLevel:     m.cfg.GEPTLevel,
			TimeRemaining: s.TimeRemaining,
			CurrentStreak: s.CurrentStreak,
			TotalAttempts: s.Attempts,
			HintsUsed:     s.HintsUsed,
		},
		CurrentItems:  []content.Item{target.Left, target.Right},
		SelectedItems: append([]string(nil), s.SelectedItems...),
	})
	if h != nil {
		s.HintsUsed++
		s.Score = scoring.Apply(s.Score, -hintScorePenalty)
	}
	ev := m.eventsLocked()
	m.mu.Unlock()

	m.emit(ev)
	return h
}

// Pause suspends the session and the countdown, preserving the
// remaining time exactly.
func (m *Manager) Pause() {
	m.mu.Lock()
	s := m.state
	if s == nil || s.Status != StatusActive {
		m.mu.Unlock()
		return
	}
	s.Status = StatusPaused
	m.stopTimerLocked()
	ev := m.eventsLocked()
	m.mu.Unlock()
	m.emit(ev)
}

// Resume restarts a paused session from its preserved remaining time.
func (m *Manager) Resume() {
	m.mu.Lock()
	s := m.state
	if s == nil || s.Status != StatusPaused {
		m.mu.Unlock()
		return
	}
	s.Status = StatusActive
	if m.cfg.TimeLimitSec > 0 && s.TimeRemaining > 0 {
		m.startTimerLocked()
	}
	ev := m.eventsLocked()
	m.mu.Unlock()
	m.emit(ev)
}

// End finishes the session early and returns the result. Returns nil
// when no session is active.
func (m *Manager) End() *Result {
	m.mu.Lock()
	if m.state == nil || m.state.Status == StatusCompleted {
		m.mu.Unlock()
		return nil
	}
	res := m.completeLocked()
	ev := m.eventsLocked()
	ev.result = res
	m.mu.Unlock()
	m.emit(ev)
	return res
}

// CurrentState returns a snapshot of the session, or nil.
func (m *Manager) CurrentState() *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil
	}
	return ptr(m.state.snapshot())
}

// completeLocked finalizes the session, applies end bonuses, builds
// the result, and flushes it to the history writer.
func (m *Manager) completeLocked() *Result {
	s := m.state
	now := m.now()
	s.Status = StatusCompleted
	s.EndedAt = now
	m.stopTimerLocked()

	acc := s.accuracy()
	if m.cfg.Scoring.EndBonuses {
		bonus := scoring.SessionBonus(m.cfg.Scoring, scoring.SessionStats{
			Accuracy:      acc,
			PerfectGame:   s.FailedAttempts == 0 && s.CorrectMatches == len(s.Pairs),
			TimeRemaining: s.TimeRemaining,
			TimeLimit:     m.cfg.TimeLimitSec,
		})
		s.Score = scoring.Apply(s.Score, bonus)
	}

	completionSec := now.Sub(s.StartedAt).Seconds()
	res := &Result{
		SessionID:           s.SessionID,
		LearnerID:           s.LearnerID,
		Score:               s.Score,
		Accuracy:            acc,
		CompletionTime:      completionSec,
		TotalAttempts:       s.Attempts,
		CorrectMatches:      s.CorrectMatches,
		HintsUsed:           s.HintsUsed,
		AverageResponseTime: mean(m.responseTimes),
		Difficulty:          m.cfg.Difficulty,
		GEPTLevel:           m.cfg.GEPTLevel,
		BestStreak:          s.BestStreak,
		MemoryRetention:     retentionEstimate(s),
		LearningEfficiency:  efficiencyEstimate(acc, completionSec),
		Recommendations:     m.recommendationsLocked(acc),
		Timestamp:           now,
	}

	if m.history != nil {
		if err := m.history.AppendResult(s.LearnerID, res); err != nil {
			m.log.Error("persist session result failed", "session", s.SessionID, "err", err)
		}
	}
	return res
}

// retentionEstimate scores memory retention out of 100, docked for
// wrong attempts and hint reliance.
func retentionEstimate(s *State) float64 {
	r := 100 - float64(s.FailedAttempts)*10 - float64(s.HintsUsed)*5
	if r < 0 {
		return 0
	}
	return r
}

// efficiencyEstimate blends accuracy with completion speed.
func efficiencyEstimate(accuracy, completionSec float64) float64 {
	if completionSec < 1 {
		completionSec = 1
	}
	return accuracy*100*0.7 + (1000/completionSec)*0.3
}

func (m *Manager) recommendationsLocked(acc float64) []string {
	s := m.state
	var recs []string
	if acc < 0.6 {
		recs = append(recs, "lower the difficulty and drill the basics")
		recs = append(recs, "use hints more freely while accuracy is low")
	} else if acc > 0.9 {
		recs = append(recs, "excellent accuracy, try a harder level")
	}
	if s.HintsUsed > len(s.Pairs)/2 {
		recs = append(recs, "try finishing a round without hints")
	}
	if s.BestStreak < 3 {
		recs = append(recs, "focus on building longer correct streaks")
	}
	if len(recs) == 0 {
		recs = append(recs, "keep practicing at this level")
	}
	return recs
}

// startTimerLocked launches the countdown goroutine. The goroutine
// re-checks session status under the lock on every tick, so a stop
// that races one final tick can never mutate a finished session.
func (m *Manager) startTimerLocked() {
	stop := make(chan struct{})
	m.timerStop = stop
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if done := m.tick(stop); done {
					return
				}
			}
		}
	}()
}

// tick decrements the countdown by one second. Returns true when the
// goroutine should exit.
func (m *Manager) tick(stop chan struct{}) bool {
	m.mu.Lock()
	s := m.state
	if s == nil || s.Status != StatusActive || m.timerStop != stop {
		m.mu.Unlock()
		return true
	}
	s.TimeRemaining--
	var ev events
	if s.TimeRemaining <= 0 {
		s.TimeRemaining = 0
		ev.result = m.completeLocked()
	}
	ev.state = ptr(s.snapshot())
	ev.stateLn, ev.matchLn, ev.completeLn = m.listenersLocked()
	m.mu.Unlock()
	m.emit(ev)
	return ev.result != nil
}

func (m *Manager) stopTimerLocked() {
	if m.timerStop != nil {
		close(m.timerStop)
		m.timerStop = nil
	}
}

func (m *Manager) matchStateLocked(responseMs int) scoring.MatchState {
	s := m.state
	return scoring.MatchState{
		Streak:          s.CurrentStreak,
		ResponseTimeMs:  responseMs,
		TimeRemaining:   s.TimeRemaining,
		Accuracy:        s.accuracy(),
		DifficultyScore: m.comps.Adaptive.Score(),
		CognitiveLoad:   adaptive.LoadScore(m.telemetry.Load(m.now())),
		PerfectPairs:    s.PerfectPairs,
		Attempts:        s.Attempts,
		FailedAttempts:  s.FailedAttempts,
	}
}

func (m *Manager) memoryContextLocked() memcurve.Context {
	return memcurve.Context{
		GameMode:        string(m.cfg.Mode),
		DifficultyLevel: m.cfg.Difficulty,
		GEPTLevel:       string(m.cfg.GEPTLevel),
	}
}

func (m *Manager) findPairLocked(aID, bID string) *content.Pair {
	for i := range m.state.Pairs {
		p := &m.state.Pairs[i]
		if (p.Left.ID == aID && p.Right.ID == bID) || (p.Left.ID == bID && p.Right.ID == aID) {
			return p
		}
	}
	return nil
}

func (m *Manager) findItemLocked(itemID string) *content.Item {
	for i := range m.state.Pairs {
		p := &m.state.Pairs[i]
		if p.Left.ID == itemID {
			return &p.Left
		}
		if p.Right.ID == itemID {
			return &p.Right
		}
	}
	return nil
}

func (m *Manager) pairOfItemLocked(itemID string) *content.Pair {
	for i := range m.state.Pairs {
		p := &m.state.Pairs[i]
		if p.Left.ID == itemID || p.Right.ID == itemID {
			return p
		}
	}
	return nil
}

func (m *Manager) itemSelectedLocked(itemID string) bool {
	for _, id := range m.state.SelectedItems {
		if id == itemID {
			return true
		}
	}
	return false
}

func (m *Manager) itemMatchedLocked(itemID string) bool {
	p := m.pairOfItemLocked(itemID)
	if p == nil {
		return false
	}
	for _, id := range m.state.MatchedPairs {
		if id == p.ID {
			return true
		}
	}
	return false
}

func (m *Manager) unmatchedPairLocked() *content.Pair {
	for i := range m.state.Pairs {
		p := &m.state.Pairs[i]
		if !m.itemMatchedLocked(p.Left.ID) {
			return p
		}
	}
	return nil
}

// markAttemptLocked records the attempted item combination and reports
// whether it was tried before.
func (m *Manager) markAttemptLocked(aID, bID string) bool {
	ids := []string{aID, bID}
	sort.Strings(ids)
	key := ids[0] + "|" + ids[1]
	seen := m.attemptedKeys[key]
	m.attemptedKeys[key] = true
	return seen
}

// events carries everything to emit after the lock is released, so
// listeners can call back into the manager.
type events struct {
	state      *State
	pair       content.Pair
	correct    bool
	haveMatch  bool
	result     *Result
	stateLn    []StateListener
	matchLn    []MatchListener
	completeLn []CompleteListener
}

func (m *Manager) listenersLocked() ([]StateListener, []MatchListener, []CompleteListener) {
	return append([]StateListener(nil), m.stateListeners...),
		append([]MatchListener(nil), m.matchListeners...),
		append([]CompleteListener(nil), m.completeListeners...)
}

func (m *Manager) eventsLocked() events {
	ev := events{}
	if m.state != nil {
		ev.state = ptr(m.state.snapshot())
	}
	ev.stateLn, ev.matchLn, ev.completeLn = m.listenersLocked()
	return ev
}

func (m *Manager) emit(ev events) {
	if ev.haveMatch {
		for _, fn := range ev.matchLn {
			fn(ev.pair, ev.correct)
		}
	}
	if ev.result != nil {
		for _, fn := range ev.completeLn {
			fn(*ev.result)
		}
	}
	if ev.state != nil {
		for _, fn := range ev.stateLn {
			fn(*ev.state)
		}
	}
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func ptr[T any](v T) *T {
	return &v
}
