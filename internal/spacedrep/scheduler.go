package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/lexmatch/internal/memcurve"
)

// Scheduler turns tracked memory state into daily learning plans and
// runs review sessions against the tracker. One scheduler serves many
// learners; calls for a single learner must be serialized by the
// caller.
type Scheduler struct {
	tracker  *memcurve.Tracker
	sessions map[string][]*ReviewSession // learner id -> finished and active sessions
	plans    map[string]*LearningPlan
	now      func() time.Time
}

// NewScheduler creates a scheduler over an existing memory tracker.
func NewScheduler(tracker *memcurve.Tracker) *Scheduler {
	return &Scheduler{
		tracker:  tracker,
		sessions: make(map[string][]*ReviewSession),
		plans:    make(map[string]*LearningPlan),
		now:      time.Now,
	}
}

// SetClock overrides the scheduler's time source.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// GenerateLearningPlan builds and stores today's review plan for a
// learner under the given preferences. The plan orders items by
// priority, then by scheduled time, and truncates to the learner's
// review budget.
func (s *Scheduler) GenerateLearningPlan(learnerID string, prefs Preferences) *LearningPlan {
	now := s.now()

	seen := make(map[string]bool)
	var schedule []ScheduleItem
	add := func(items []*memcurve.Item) {
		for _, it := range items {
			if seen[it.ContentID] {
				continue
			}
			seen[it.ContentID] = true
			schedule = append(schedule, ScheduleItem{
				ContentID:         it.ContentID,
				LearnerID:         learnerID,
				ScheduledAt:       it.NextReviewAt,
				Priority:          priorityFor(it, now),
				EstimatedDuration: estimateDuration(it),
				ReviewType:        reviewTypeFor(it),
				MemoryStrength:    it.MemoryStrength,
				DifficultyLevel:   it.DifficultyLevel,
				TotalReviews:      it.TotalReviews,
			})
		}
	}
	add(s.tracker.OverdueItems(learnerID, now))
	add(s.tracker.DueItems(learnerID, now))
	add(s.upcomingItems(learnerID, now))

	sort.SliceStable(schedule, func(i, j int) bool {
		pi, pj := schedule[i].Priority.rank(), schedule[j].Priority.rank()
		if pi != pj {
			return pi > pj
		}
		return schedule[i].ScheduledAt.Before(schedule[j].ScheduledAt)
	})

	maxReview := prefs.MaxReviewItems
	if maxReview <= 0 {
		maxReview = 20
	}
	totalDue := len(schedule)
	if len(schedule) > maxReview {
		schedule = schedule[:maxReview]
	}

	plan := &LearningPlan{
		LearnerID:   learnerID,
		GeneratedAt: now,
		Goal: DailyGoal{
			NewItems:    prefs.MaxNewItems,
			ReviewItems: len(schedule),
			StudyTime:   prefs.DailyStudyTime,
		},
		Schedule:               schedule,
		PriorityItems:          priorityItems(schedule, maxReview),
		DifficultyDistribution: make(map[string]int),
	}
	for _, item := range schedule {
		plan.EstimatedTime += item.EstimatedDuration
		if item.DifficultyLevel != "" {
			plan.DifficultyDistribution[item.DifficultyLevel]++
		}
	}
	plan.Flags = s.adaptiveFlags(learnerID, totalDue, maxReview)

	s.plans[learnerID] = plan
	return plan
}

// planningHorizon is how far ahead the plan pulls not-yet-due reviews.
const planningHorizon = 7 * 24 * time.Hour

// upcomingItems returns non-forgotten items due within the planning
// horizon but not yet due now.
func (s *Scheduler) upcomingItems(learnerID string, now time.Time) []*memcurve.Item {
	var upcoming []*memcurve.Item
	for _, it := range s.tracker.LearnerItems(learnerID) {
		if it.Status == memcurve.StatusForgotten || it.IsDue(now) {
			continue
		}
		if it.NextReviewAt.Sub(now) <= planningHorizon {
			upcoming = append(upcoming, it)
		}
	}
	return upcoming
}

// priorityItems extracts the urgent and high entries, capped at ten or
// the review budget, whichever is smaller.
func priorityItems(schedule []ScheduleItem, maxReview int) []ScheduleItem {
	limit := 10
	if maxReview < limit {
		limit = maxReview
	}
	var top []ScheduleItem
	for _, item := range schedule {
		if item.Priority != PriorityUrgent && item.Priority != PriorityHigh {
			continue
		}
		top = append(top, item)
		if len(top) == limit {
			break
		}
	}
	return top
}

// adaptiveFlags raises plan-level corrections when aggregate memory
// state shows the learner is falling behind.
func (s *Scheduler) adaptiveFlags(learnerID string, totalDue, maxReview int) AdaptiveFlags {
	report := s.tracker.AnalyzeLearner(learnerID)
	var f AdaptiveFlags
	if report.TotalItems == 0 {
		return f
	}
	if report.OverallRetention < 0.6 {
		f.ReduceDifficulty = true
	}
	if report.AverageStrength < 0.4 {
		f.ExtendIntervals = true
	}
	if float64(totalDue) > 1.5*float64(maxReview) {
		f.ReduceLoad = true
	}
	return f
}

// CurrentPlan returns the learner's stored plan, or nil if none was
// generated.
func (s *Scheduler) CurrentPlan(learnerID string) *LearningPlan {
	return s.plans[learnerID]
}

// UpdatePlan replaces the stored plan for the plan's learner.
func (s *Scheduler) UpdatePlan(plan *LearningPlan) {
	if plan == nil {
		return
	}
	s.plans[plan.LearnerID] = plan
}

// ClearLearnerData drops the learner's sessions and plan. Memory items
// live in the tracker and are cleared there.
func (s *Scheduler) ClearLearnerData(learnerID string) {
	delete(s.sessions, learnerID)
	delete(s.plans, learnerID)
}
