package hints

import (
	"math/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// maxHistory caps the hint log; on overflow the oldest half is
	// dropped.
	maxHistory  = 100
	keepHistory = 50
)

// System selects a strategy per request and tracks generated hints.
// One system per learner.
type System struct {
	strategies []Strategy
	history    []*Hint
	entropy    *rand.Rand
	now        func() time.Time
}

// NewSystem creates a hint system with the default strategy table.
func NewSystem() *System {
	s := &System{
		strategies: DefaultStrategies(),
		entropy:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
	}
	sort.SliceStable(s.strategies, func(i, j int) bool {
		return s.strategies[i].Priority > s.strategies[j].Priority
	})
	return s
}

// SetClock overrides the system's time source for tests.
func (s *System) SetClock(now func() time.Time) {
	s.now = now
}

// Generate picks the highest-priority applicable strategy and produces
// a hint. The default strategy always applies, so the result is never
// empty.
func (s *System) Generate(r *Request) *Hint {
	for _, strat := range s.strategies {
		if !strat.Applies(r) {
			continue
		}
		hint := strat.Generate(r)
		hint.ID = s.newID()
		hint.GeneratedAt = s.now()
		hint.Strategy = strat.Name
		s.record(&hint)
		return &hint
	}
	return nil // unreachable: default strategy always applies
}

func (s *System) record(h *Hint) {
	s.history = append(s.history, h)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-keepHistory:]
	}
}

func (s *System) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

// EvaluateEffectiveness folds one outcome into a hint instance's
// running success rate. Unknown ids are ignored.
func (s *System) EvaluateEffectiveness(hintID string, success bool) {
	for _, h := range s.history {
		if h.ID != hintID {
			continue
		}
		h.UsageCount++
		successes := h.SuccessRate * float64(h.UsageCount-1)
		if success {
			successes++
		}
		h.SuccessRate = successes / float64(h.UsageCount)
		h.Effectiveness = h.SuccessRate
		return
	}
}

// History returns the retained hint log, oldest first.
func (s *System) History() []*Hint {
	out := make([]*Hint, len(s.history))
	copy(out, s.history)
	return out
}

// Clear erases the hint log.
func (s *System) Clear() {
	s.history = nil
}

// Statistics summarizes the retained hint log.
type Statistics struct {
	TotalHints           int           `json:"total_hints"`
	ByLevel              map[Level]int `json:"by_level"`
	ByKind               map[Kind]int  `json:"by_kind"`
	AverageEffectiveness float64       `json:"average_effectiveness"`
	RecentHints          []*Hint       `json:"recent_hints"`
}

// Stats aggregates level/kind counts and average effectiveness over
// hints whose outcome has been reported.
func (s *System) Stats() Statistics {
	stats := Statistics{
		TotalHints: len(s.history),
		ByLevel:    make(map[Level]int),
		ByKind:     make(map[Kind]int),
	}
	var effSum float64
	var effCount int
	for _, h := range s.history {
		stats.ByLevel[h.Level]++
		stats.ByKind[h.Kind]++
		if h.UsageCount > 0 {
			effSum += h.Effectiveness
			effCount++
		}
	}
	if effCount > 0 {
		stats.AverageEffectiveness = effSum / float64(effCount)
	}
	recent := s.history
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	stats.RecentHints = append([]*Hint(nil), recent...)
	return stats
}
