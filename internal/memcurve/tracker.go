package memcurve

import (
	"math"
	"time"
)

const (
	// DefaultForgettingRate is the Ebbinghaus-derived decay constant used
	// until a learner has personalized curve parameters.
	DefaultForgettingRate = 0.5

	// InitialDifficultyFactor is the SM-2 starting ease.
	InitialDifficultyFactor = 2.5

	minDifficultyFactor = 1.3
	maxDifficultyFactor = 2.5

	// MaxIntervalDays caps the review interval at one year.
	MaxIntervalDays = 365
)

// Performance describes one review outcome.
type Performance struct {
	Correct      bool
	ResponseTime int // milliseconds
	// Confidence is the learner's self-reported confidence in [0,1].
	// Negative means not reported; 0.5 (neutral) is assumed.
	Confidence float64
}

func (p Performance) confidenceOrNeutral() float64 {
	if p.Confidence < 0 {
		return 0.5
	}
	return clamp(p.Confidence, 0, 1)
}

// Context carries the game situation an item was learned in.
type Context struct {
	GameMode        string
	DifficultyLevel string
	GEPTLevel       string
}

// CurveParams holds per-learner forgetting-curve parameters, updated by
// exponential moving average after every review.
type CurveParams struct {
	LearnerID              string    `json:"learner_id"`
	InitialStrength        float64   `json:"initial_strength"`
	DecayConstant          float64   `json:"decay_constant"`
	RetentionFactor        float64   `json:"retention_factor"`
	PersonalizedMultiplier float64   `json:"personalized_multiplier"`
	LastUpdated            time.Time `json:"last_updated"`
}

// Tracker models per-learner, per-content memory strength over time
// using an exponential forgetting curve. All collections are keyed by
// learner id; calls for a single learner must be serialized by the
// caller.
type Tracker struct {
	items  map[string]map[string]*Item // learner id -> content id -> item
	params map[string]*CurveParams
	now    func() time.Time
}

// NewTracker creates an empty memory tracker.
func NewTracker() *Tracker {
	return &Tracker{
		items:  make(map[string]map[string]*Item),
		params: make(map[string]*CurveParams),
		now:    time.Now,
	}
}

// SetClock overrides the tracker's time source. Used by tests and by
// the review scheduler when replaying history.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// RecordNewLearning registers first exposure to a content item and
// returns the created memory record. If the item already exists it is
// replaced, matching first-exposure semantics for re-learned content.
func (t *Tracker) RecordNewLearning(learnerID, contentID string, ctx Context, perf Performance) *Item {
	now := t.now()
	strength := initialStrength(perf)
	interval := initialInterval(strength)

	it := &Item{
		ContentID:        contentID,
		LearnerID:        learnerID,
		Status:           StatusNew,
		MemoryStrength:   strength,
		StrengthLevel:    levelForStrength(strength),
		FirstLearnedAt:   now,
		LastReviewedAt:   now,
		NextReviewAt:     now.Add(daysToDuration(interval)),
		TotalReviews:     1,
		CurrentInterval:  interval,
		DifficultyFactor: InitialDifficultyFactor,
		ForgettingRate:   t.forgettingRate(learnerID),
		GameMode:         ctx.GameMode,
		DifficultyLevel:  ctx.DifficultyLevel,
		GEPTLevel:        ctx.GEPTLevel,
	}
	if perf.Correct {
		it.CorrectReviews = 1
		it.ConsecutiveCorrect = 1
	} else {
		it.ConsecutiveIncorrect = 1
	}
	it.appendPoint(CurvePoint{
		Timestamp:    now,
		Strength:     strength,
		Correct:      perf.Correct,
		ResponseTime: perf.ResponseTime,
		Confidence:   perf.confidenceOrNeutral(),
	})

	if t.items[learnerID] == nil {
		t.items[learnerID] = make(map[string]*Item)
	}
	t.items[learnerID][contentID] = it
	t.updateCurveParams(learnerID, it)
	return it
}

// RecordReviewResult applies one review outcome to an existing item.
// Returns nil for an unknown content id; callers must treat that as a
// no-op, not a failure.
func (t *Tracker) RecordReviewResult(learnerID, contentID string, perf Performance) *Item {
	it := t.Get(learnerID, contentID)
	if it == nil {
		return nil
	}

	now := t.now()
	elapsedDays := now.Sub(it.LastReviewedAt).Hours() / 24

	it.TotalReviews++
	it.LastReviewedAt = now
	if perf.Correct {
		it.CorrectReviews++
		it.ConsecutiveCorrect++
		it.ConsecutiveIncorrect = 0
	} else {
		it.ConsecutiveCorrect = 0
		it.ConsecutiveIncorrect++
	}

	it.MemoryStrength = reviewedStrength(it, perf, elapsedDays)
	it.StrengthLevel = levelForStrength(it.MemoryStrength)
	it.Status = statusFor(it)

	next := nextInterval(it, perf.Correct)
	it.PreviousInterval = it.CurrentInterval
	it.CurrentInterval = next
	it.NextReviewAt = now.Add(daysToDuration(next))

	it.DifficultyFactor = adjustedDifficultyFactor(it.DifficultyFactor, perf)

	it.appendPoint(CurvePoint{
		Timestamp:    now,
		Strength:     it.MemoryStrength,
		Correct:      perf.Correct,
		ResponseTime: perf.ResponseTime,
		Confidence:   perf.confidenceOrNeutral(),
	})

	t.updateCurveParams(learnerID, it)
	return it
}

// Get returns the memory item for a (learner, content) pair, or nil.
func (t *Tracker) Get(learnerID, contentID string) *Item {
	return t.items[learnerID][contentID]
}

// LearnerItems returns all memory items for a learner.
func (t *Tracker) LearnerItems(learnerID string) []*Item {
	m := t.items[learnerID]
	items := make([]*Item, 0, len(m))
	for _, it := range m {
		items = append(items, it)
	}
	return items
}

// DueItems returns non-forgotten items at or past their review time.
func (t *Tracker) DueItems(learnerID string, now time.Time) []*Item {
	var due []*Item
	for _, it := range t.items[learnerID] {
		if it.Status != StatusForgotten && it.IsDue(now) {
			due = append(due, it)
		}
	}
	return due
}

// OverdueItems returns non-forgotten items more than one day past due.
func (t *Tracker) OverdueItems(learnerID string, now time.Time) []*Item {
	var overdue []*Item
	for _, it := range t.items[learnerID] {
		if it.Status != StatusForgotten && it.IsOverdue(now) {
			overdue = append(overdue, it)
		}
	}
	return overdue
}

// CurveParams returns the learner's forgetting-curve parameters, or nil
// if the learner has no reviews yet.
func (t *Tracker) CurveParams(learnerID string) *CurveParams {
	return t.params[learnerID]
}

// ClearLearnerData erases all memory records for a learner. This is the
// only deletion path; review outcomes never remove items.
func (t *Tracker) ClearLearnerData(learnerID string) {
	delete(t.items, learnerID)
	delete(t.params, learnerID)
}

// initialStrength computes first-exposure strength: 0.5 base, ±0.3 for
// correctness, up to +0.2 for fast response, ±0.2 for confidence offset
// from neutral, clamped to [0.1, 0.9].
func initialStrength(perf Performance) float64 {
	s := 0.5
	if perf.Correct {
		s += 0.3
	} else {
		s -= 0.2
	}
	timeBonus := math.Max(0, float64(5000-perf.ResponseTime)/10000)
	s += timeBonus * 0.2
	s += (perf.confidenceOrNeutral() - 0.5) * 0.2
	return clamp(s, 0.1, 0.9)
}

// initialInterval picks the first review interval from strength.
func initialInterval(strength float64) float64 {
	switch {
	case strength >= 0.8:
		return 3
	case strength >= 0.6:
		return 2
	case strength >= 0.4:
		return 1
	default:
		return 0.5
	}
}

// reviewedStrength decays the stored strength over the elapsed days and
// applies reinforcement or penalty for the outcome.
func reviewedStrength(it *Item, perf Performance, elapsedDays float64) float64 {
	prior := it.MemoryStrength
	decayed := prior * math.Exp(-it.ForgettingRate*elapsedDays)

	var s float64
	if perf.Correct {
		reinforcement := 0.1 + (1-prior)*0.3
		s = math.Min(1.0, decayed+reinforcement)
		if perf.ResponseTime < 2000 {
			s += 0.05
		}
	} else {
		penalty := 0.2 + prior*0.1
		s = math.Max(0.1, decayed-penalty)
	}

	s += (perf.confidenceOrNeutral() - 0.5) * 0.1
	return clamp(s, 0.1, 1.0)
}

// nextInterval recomputes the review interval, SM-2 style. An incorrect
// review resets the interval to 20% (floor half a day); the first two
// correct reviews use the fixed 1-day/3-day ladder, after which the
// difficulty factor and strength scale the interval up to one year.
func nextInterval(it *Item, correct bool) float64 {
	if !correct {
		return math.Max(0.5, it.CurrentInterval*0.2)
	}
	switch it.TotalReviews {
	case 2:
		return 1
	case 3:
		return 3
	default:
		scaled := it.CurrentInterval * it.DifficultyFactor * (0.5 + it.MemoryStrength*0.5)
		return math.Min(MaxIntervalDays, scaled)
	}
}

// adjustedDifficultyFactor nudges the ease factor per outcome: down 0.2
// on an incorrect answer, up 0.1 for a fast correct answer, down 0.05
// for a slow one, always clamped to [1.3, 2.5].
func adjustedDifficultyFactor(factor float64, perf Performance) float64 {
	if !perf.Correct {
		return math.Max(minDifficultyFactor, factor-0.2)
	}
	adjustment := 0.0
	if perf.ResponseTime < 2000 {
		adjustment = 0.1
	} else if perf.ResponseTime > 5000 {
		adjustment = -0.05
	}
	return clamp(factor+adjustment, minDifficultyFactor, maxDifficultyFactor)
}

// forgettingRate returns the learner's personalized decay constant, or
// the Ebbinghaus default for new learners.
func (t *Tracker) forgettingRate(learnerID string) float64 {
	if p := t.params[learnerID]; p != nil {
		return p.DecayConstant
	}
	return DefaultForgettingRate
}

// updateCurveParams folds the latest item outcome into the learner's
// curve parameters by exponential moving average.
func (t *Tracker) updateCurveParams(learnerID string, it *Item) {
	p := t.params[learnerID]
	if p == nil {
		t.params[learnerID] = &CurveParams{
			LearnerID:              learnerID,
			InitialStrength:        it.MemoryStrength,
			DecayConstant:          DefaultForgettingRate,
			RetentionFactor:        0.8,
			PersonalizedMultiplier: 1.0,
			LastUpdated:            t.now(),
		}
		return
	}
	retention := it.Accuracy()
	p.RetentionFactor = p.RetentionFactor*0.9 + retention*0.1
	p.DecayConstant = clamp(1-p.RetentionFactor, 0.1, 1.0)
	p.LastUpdated = t.now()
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}
