package spacedrep

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lexmatch/internal/memcurve"
)

// ReviewSession tracks the progress of one sitting through a plan's
// schedule.
type ReviewSession struct {
	ID        string    `json:"id"`
	LearnerID string    `json:"learner_id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`

	PlannedItems   []string `json:"planned_items"`
	CompletedItems []string `json:"completed_items"`
	SkippedItems   []string `json:"skipped_items"`

	Accuracy            float64 `json:"accuracy"`
	AverageResponseTime float64 `json:"average_response_time"` // milliseconds
	correctCount        int
	responseTimeSum     float64
	timedSamples        int
}

// SessionSummary is the end-of-session report.
type SessionSummary struct {
	SessionID       string   `json:"session_id"`
	LearnerID       string   `json:"learner_id"`
	Duration        int      `json:"duration"` // minutes
	CompletionRate  float64  `json:"completion_rate"`
	Accuracy        float64  `json:"accuracy"`
	Effectiveness   float64  `json:"effectiveness"`
	MemoryGain      float64  `json:"memory_gain"`
	Recommendations []string `json:"recommendations"`
}

// Statistics aggregates a learner's finished review sessions.
type Statistics struct {
	TotalSessions        int     `json:"total_sessions"`
	TotalReviews         int     `json:"total_reviews"`
	AverageAccuracy      float64 `json:"average_accuracy"`
	AverageEffectiveness float64 `json:"average_effectiveness"`
	StudyTimeMinutes     int     `json:"study_time_minutes"`
	RecentTrend          Trend   `json:"recent_trend"`
}

// Trend labels how a learner's recent sessions compare to the rest.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// StartReviewSession opens a session over the given content ids. An
// empty slice starts the session over the learner's current plan.
func (s *Scheduler) StartReviewSession(learnerID string, contentIDs []string) *ReviewSession {
	if len(contentIDs) == 0 {
		if plan := s.plans[learnerID]; plan != nil {
			for _, item := range plan.Schedule {
				contentIDs = append(contentIDs, item.ContentID)
			}
		}
	}
	sess := &ReviewSession{
		ID:           uuid.NewString(),
		LearnerID:    learnerID,
		StartedAt:    s.now(),
		PlannedItems: contentIDs,
	}
	s.sessions[learnerID] = append(s.sessions[learnerID], sess)
	return sess
}

// RecordReviewResult applies one review outcome within a session: the
// tracker is updated, the item moves from planned to completed, and the
// session's running accuracy and response time follow. Unknown session
// or content ids are ignored.
func (s *Scheduler) RecordReviewResult(sessionID, contentID string, perf memcurve.Performance) {
	sess := s.findSession(sessionID)
	if sess == nil {
		return
	}
	it := s.tracker.RecordReviewResult(sess.LearnerID, contentID, perf)
	if it == nil {
		return
	}

	sess.PlannedItems = remove(sess.PlannedItems, contentID)
	sess.CompletedItems = append(sess.CompletedItems, contentID)

	if p := it.LastPoint(); p != nil {
		if p.Correct {
			sess.correctCount++
		}
		sess.responseTimeSum += float64(p.ResponseTime)
		sess.timedSamples++
	}
	sess.Accuracy = float64(sess.correctCount) / float64(len(sess.CompletedItems))
	if sess.timedSamples > 0 {
		sess.AverageResponseTime = sess.responseTimeSum / float64(sess.timedSamples)
	}
}

// SkipReviewItem moves an item from planned to skipped.
func (s *Scheduler) SkipReviewItem(sessionID, contentID string) {
	sess := s.findSession(sessionID)
	if sess == nil {
		return
	}
	before := len(sess.PlannedItems)
	sess.PlannedItems = remove(sess.PlannedItems, contentID)
	if len(sess.PlannedItems) < before {
		sess.SkippedItems = append(sess.SkippedItems, contentID)
	}
}

// EndReviewSession closes a session and returns its summary. An
// unknown session id returns nil.
func (s *Scheduler) EndReviewSession(sessionID string) *SessionSummary {
	sess := s.findSession(sessionID)
	if sess == nil {
		return nil
	}
	now := s.now()
	sess.EndedAt = now

	planned := len(sess.PlannedItems) + len(sess.CompletedItems) + len(sess.SkippedItems)
	completion := 0.0
	if planned > 0 {
		completion = float64(len(sess.CompletedItems)) / float64(planned)
	}
	effectiveness := sessionEffectiveness(completion, sess.Accuracy, sess.AverageResponseTime)
	gain := s.memoryGain(sess)

	return &SessionSummary{
		SessionID:       sess.ID,
		LearnerID:       sess.LearnerID,
		Duration:        int(now.Sub(sess.StartedAt).Minutes()),
		CompletionRate:  completion,
		Accuracy:        sess.Accuracy,
		Effectiveness:   effectiveness,
		MemoryGain:      gain,
		Recommendations: sessionRecommendations(sess, effectiveness, gain),
	}
}

// sessionEffectiveness blends completion, accuracy, and speed into one
// score in [0, 1].
func sessionEffectiveness(completion, accuracy, avgResponseMs float64) float64 {
	speed := math.Max(0, 1-avgResponseMs/10000)
	return math.Min(1, 0.4*completion+0.4*accuracy+0.2*speed)
}

// memoryGain averages the strength delta of each completed item's last
// two curve points.
func (s *Scheduler) memoryGain(sess *ReviewSession) float64 {
	var sum float64
	counted := 0
	for _, contentID := range sess.CompletedItems {
		it := s.tracker.Get(sess.LearnerID, contentID)
		if it == nil || len(it.CurvePoints) < 2 {
			continue
		}
		last := it.CurvePoints[len(it.CurvePoints)-1]
		prev := it.CurvePoints[len(it.CurvePoints)-2]
		sum += last.Strength - prev.Strength
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

func sessionRecommendations(sess *ReviewSession, effectiveness, gain float64) []string {
	var recs []string
	if sess.Accuracy < 0.7 && len(sess.CompletedItems) > 0 {
		recs = append(recs, "accuracy was low, slow down and reread each pair")
	}
	if sess.AverageResponseTime > 5000 {
		recs = append(recs, "responses were slow, try shorter but more frequent sessions")
	}
	if len(sess.SkippedItems) > len(sess.CompletedItems) {
		recs = append(recs, fmt.Sprintf("%d items were skipped, schedule a follow-up session", len(sess.SkippedItems)))
	}
	if effectiveness > 0.8 {
		recs = append(recs, "great session, consider adding new content")
	}
	if gain > 0.1 {
		recs = append(recs, "memory strength improved noticeably this session")
	} else if gain < 0 {
		recs = append(recs, "memory strength dropped, review these items again tomorrow")
	}
	if len(recs) == 0 {
		recs = append(recs, "steady progress, keep the current pace")
	}
	return recs
}

// Statistics aggregates the learner's finished sessions.
func (s *Scheduler) Statistics(learnerID string) Statistics {
	var stats Statistics
	var finished []*ReviewSession
	for _, sess := range s.sessions[learnerID] {
		if !sess.EndedAt.IsZero() {
			finished = append(finished, sess)
		}
	}
	stats.TotalSessions = len(finished)
	if len(finished) == 0 {
		stats.RecentTrend = TrendStable
		return stats
	}

	var accSum, effSum float64
	for _, sess := range finished {
		stats.TotalReviews += len(sess.CompletedItems)
		stats.StudyTimeMinutes += int(sess.EndedAt.Sub(sess.StartedAt).Minutes())
		accSum += sess.Accuracy
		planned := len(sess.PlannedItems) + len(sess.CompletedItems) + len(sess.SkippedItems)
		completion := 0.0
		if planned > 0 {
			completion = float64(len(sess.CompletedItems)) / float64(planned)
		}
		effSum += sessionEffectiveness(completion, sess.Accuracy, sess.AverageResponseTime)
	}
	stats.AverageAccuracy = accSum / float64(len(finished))
	stats.AverageEffectiveness = effSum / float64(len(finished))
	stats.RecentTrend = recentTrend(finished, stats.AverageAccuracy)
	return stats
}

// recentTrend compares the last five sessions' accuracy against the
// lifetime average.
func recentTrend(finished []*ReviewSession, overall float64) Trend {
	recent := finished
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	var sum float64
	for _, sess := range recent {
		sum += sess.Accuracy
	}
	avg := sum / float64(len(recent))
	switch {
	case avg > overall+0.1:
		return TrendImproving
	case avg < overall-0.1:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func (s *Scheduler) findSession(sessionID string) *ReviewSession {
	for _, sessions := range s.sessions {
		for _, sess := range sessions {
			if sess.ID == sessionID {
				return sess
			}
		}
	}
	return nil
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
