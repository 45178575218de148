// Package engine is the multi-learner façade over the per-learner
// component sets. Each learner gets an owned tracker, error analyzer,
// hint system, difficulty controller, review scheduler, and match-game
// orchestrator; nothing is shared across learner identities. Calls for
// one learner must be serialized by the caller.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/lexmatch/internal/adaptive"
	"github.com/abhisek/lexmatch/internal/content"
	"github.com/abhisek/lexmatch/internal/diagnosis"
	"github.com/abhisek/lexmatch/internal/game"
	"github.com/abhisek/lexmatch/internal/hints"
	"github.com/abhisek/lexmatch/internal/memcurve"
	"github.com/abhisek/lexmatch/internal/spacedrep"
	"github.com/abhisek/lexmatch/internal/store"
)

// Options configure a new Engine. All fields are optional; a zero
// Options gives an in-memory engine with the moderate strategy.
type Options struct {
	History   store.HistoryRepo
	Snapshots store.SnapshotRepo
	Strategy  adaptive.Strategy
	Logger    *slog.Logger
}

// Engine owns one component set per learner, created lazily on first
// use.
type Engine struct {
	history  store.HistoryRepo
	snaps    store.SnapshotRepo
	strategy adaptive.Strategy
	log      *slog.Logger
	now      func() time.Time

	learners map[string]*learnerSet
}

// learnerSet is everything the engine holds for one learner.
type learnerSet struct {
	tracker   *memcurve.Tracker
	analyzer  *diagnosis.Analyzer
	hints     *hints.System
	control   *adaptive.Controller
	scheduler *spacedrep.Scheduler
	manager   *game.Manager

	// results kept in memory in chronological order, alongside
	// whatever the history repo persists. A timed session can finish
	// on the countdown goroutine, so access goes through resultsMu.
	resultsMu sync.Mutex
	results   []*game.Result
}

// New builds an engine from options.
func New(opts Options) *Engine {
	if opts.Strategy == "" {
		opts.Strategy = adaptive.StrategyModerate
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		history:  opts.History,
		snaps:    opts.Snapshots,
		strategy: opts.Strategy,
		log:      opts.Logger,
		now:      time.Now,
		learners: make(map[string]*learnerSet),
	}
}

// SetClock overrides the time source for the engine and every component
// set it creates. Existing learner sets are re-clocked too.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
	for _, ls := range e.learners {
		ls.tracker.SetClock(now)
		ls.analyzer.SetClock(now)
		ls.hints.SetClock(now)
		ls.scheduler.SetClock(now)
		ls.manager.SetClock(now)
	}
}

// learner returns the component set for a learner, creating it on
// first use.
func (e *Engine) learner(learnerID string) *learnerSet {
	if ls, ok := e.learners[learnerID]; ok {
		return ls
	}

	ls := &learnerSet{
		tracker:  memcurve.NewTracker(),
		analyzer: diagnosis.NewAnalyzer(),
		hints:    hints.NewSystem(),
		control:  adaptive.NewController(e.strategy, e.log),
	}
	ls.scheduler = spacedrep.NewScheduler(ls.tracker)
	ls.manager = game.NewManager(game.Components{
		Tracker:  ls.tracker,
		Analyzer: ls.analyzer,
		Hints:    ls.hints,
		Adaptive: ls.control,
	}, &resultSink{engine: e, set: ls}, e.log)

	ls.tracker.SetClock(e.now)
	ls.analyzer.SetClock(e.now)
	ls.hints.SetClock(e.now)
	ls.scheduler.SetClock(e.now)
	ls.manager.SetClock(e.now)

	e.learners[learnerID] = ls
	return ls
}

// resultSink receives finished session results from a learner's
// orchestrator: it always appends to the in-memory history and, when a
// repo is configured, persists there too.
type resultSink struct {
	engine *Engine
	set    *learnerSet
}

func (s *resultSink) AppendResult(learnerID string, res *game.Result) error {
	s.set.resultsMu.Lock()
	s.set.results = append(s.set.results, res)
	s.set.resultsMu.Unlock()
	if s.engine.history == nil {
		return nil
	}
	return s.engine.history.Append(context.Background(), learnerID, res)
}

// Manager exposes the learner's match-game orchestrator for listener
// registration and resolve-delay tuning.
func (e *Engine) Manager(learnerID string) *game.Manager {
	return e.learner(learnerID).manager
}

// StartSession opens a match session for a learner.
func (e *Engine) StartSession(learnerID string, cfg game.Config, supplier content.Supplier) (string, error) {
	return e.learner(learnerID).manager.Start(learnerID, cfg, supplier)
}

// SelectItem forwards one selection to the learner's active session.
func (e *Engine) SelectItem(learnerID, itemID string) bool {
	return e.learner(learnerID).manager.SelectItem(itemID)
}

// RequestHint generates a hint for the learner's active session.
func (e *Engine) RequestHint(learnerID string) *hints.Hint {
	return e.learner(learnerID).manager.RequestHint()
}

// PauseSession suspends the learner's active session.
func (e *Engine) PauseSession(learnerID string) {
	e.learner(learnerID).manager.Pause()
}

// ResumeSession restarts the learner's paused session.
func (e *Engine) ResumeSession(learnerID string) {
	e.learner(learnerID).manager.Resume()
}

// EndSession finishes the learner's session early.
func (e *Engine) EndSession(learnerID string) *game.Result {
	return e.learner(learnerID).manager.End()
}

// SessionState returns a snapshot of the learner's session, or nil.
func (e *Engine) SessionState(learnerID string) *game.State {
	return e.learner(learnerID).manager.CurrentState()
}

// GenerateLearningPlan builds a review plan from the learner's memory
// state.
func (e *Engine) GenerateLearningPlan(learnerID string, prefs spacedrep.Preferences) *spacedrep.LearningPlan {
	return e.learner(learnerID).scheduler.GenerateLearningPlan(learnerID, prefs)
}

// CurrentPlan returns the learner's most recent plan, or nil.
func (e *Engine) CurrentPlan(learnerID string) *spacedrep.LearningPlan {
	return e.learner(learnerID).scheduler.CurrentPlan(learnerID)
}

// StartReviewSession opens a review session over the given content ids,
// or over the current plan when ids are empty.
func (e *Engine) StartReviewSession(learnerID string, contentIDs []string) *spacedrep.ReviewSession {
	return e.learner(learnerID).scheduler.StartReviewSession(learnerID, contentIDs)
}

// RecordReviewResult records one review outcome in an open session.
func (e *Engine) RecordReviewResult(learnerID, sessionID, contentID string, perf memcurve.Performance) {
	e.learner(learnerID).scheduler.RecordReviewResult(sessionID, contentID, perf)
}

// SkipReviewItem marks a planned item skipped in an open session.
func (e *Engine) SkipReviewItem(learnerID, sessionID, contentID string) {
	e.learner(learnerID).scheduler.SkipReviewItem(sessionID, contentID)
}

// EndReviewSession closes a review session and returns its summary.
func (e *Engine) EndReviewSession(learnerID, sessionID string) *spacedrep.SessionSummary {
	return e.learner(learnerID).scheduler.EndReviewSession(sessionID)
}

// ReviewStatistics aggregates the learner's finished review sessions.
func (e *Engine) ReviewStatistics(learnerID string) spacedrep.Statistics {
	return e.learner(learnerID).scheduler.Statistics(learnerID)
}

// MemoryReport builds the learner's full memory analysis.
func (e *Engine) MemoryReport(learnerID string) *memcurve.Report {
	return e.learner(learnerID).tracker.AnalyzeLearner(learnerID)
}

// ErrorAnalysis runs pattern analysis over the learner's error history.
func (e *Engine) ErrorAnalysis(learnerID string) *diagnosis.AnalysisResult {
	return e.learner(learnerID).analyzer.AnalyzePatterns()
}

// HintStatistics aggregates the learner's hint usage.
func (e *Engine) HintStatistics(learnerID string) hints.Statistics {
	return e.learner(learnerID).hints.Stats()
}

// DifficultyScore returns the learner's current difficulty in [0,1].
func (e *Engine) DifficultyScore(learnerID string) float64 {
	return e.learner(learnerID).control.Score()
}

// SaveMemorySnapshot persists the learner's memory state to the
// snapshot repo.
func (e *Engine) SaveMemorySnapshot(ctx context.Context, learnerID string) error {
	if e.snaps == nil {
		return fmt.Errorf("no snapshot store configured")
	}
	snap := e.learner(learnerID).tracker.ExportLearner(learnerID)
	if err := e.snaps.Save(ctx, snap); err != nil {
		return fmt.Errorf("save memory snapshot: %w", err)
	}
	return nil
}

// LoadMemorySnapshot restores the learner's most recent persisted
// memory state. A learner with no snapshot is a no-op.
func (e *Engine) LoadMemorySnapshot(ctx context.Context, learnerID string) error {
	if e.snaps == nil {
		return fmt.Errorf("no snapshot store configured")
	}
	snap, err := e.snaps.Latest(ctx, learnerID)
	if err != nil {
		return fmt.Errorf("load memory snapshot: %w", err)
	}
	e.learner(learnerID).tracker.ImportLearner(snap)
	return nil
}

// ResetLearner erases all in-memory state for a learner. Persisted
// history and snapshots are left to the caller.
func (e *Engine) ResetLearner(learnerID string) {
	ls, ok := e.learners[learnerID]
	if !ok {
		return
	}
	ls.tracker.ClearLearnerData(learnerID)
	ls.analyzer.Clear()
	ls.hints.Clear()
	ls.scheduler.ClearLearnerData(learnerID)
	delete(e.learners, learnerID)
}
