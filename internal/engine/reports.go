package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/lexmatch/internal/game"
	"github.com/abhisek/lexmatch/internal/memcurve"
)

// Analytics aggregates a learner's past session results.
type Analytics struct {
	TotalSessions         int              `json:"total_sessions"`
	AverageScore          float64          `json:"average_score"`
	AverageAccuracy       float64          `json:"average_accuracy"`
	AverageCompletionTime float64          `json:"average_completion_time"`
	ImprovementRate       float64          `json:"improvement_rate"`
	DifficultyProgression []string         `json:"difficulty_progression"`
	LearningCurve         []CurveEntry     `json:"learning_curve"`
	RetentionCurve        []RetentionPoint `json:"retention_curve"`
}

// CurveEntry is one session on the learning curve, in play order.
type CurveEntry struct {
	Game      int       `json:"game"`
	Score     int       `json:"score"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// RetentionPoint projects retention at a review-interval horizon.
type RetentionPoint struct {
	IntervalDays  int     `json:"interval_days"`
	RetentionRate float64 `json:"retention_rate"`
}

// improvementWindow is how many sessions each end of the improvement
// comparison covers.
const improvementWindow = 5

// Analytics recomputes aggregate analytics from the learner's session
// history. With a history repo configured the persisted history is
// authoritative; otherwise the in-memory results of this process are
// used.
func (e *Engine) Analytics(ctx context.Context, learnerID string) (*Analytics, error) {
	results, err := e.sessionHistory(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	a := &Analytics{TotalSessions: len(results)}
	if len(results) == 0 {
		return a, nil
	}

	var scoreSum, accSum, timeSum float64
	for i, res := range results {
		scoreSum += float64(res.Score)
		accSum += res.Accuracy
		timeSum += res.CompletionTime
		a.DifficultyProgression = append(a.DifficultyProgression, res.Difficulty)
		a.LearningCurve = append(a.LearningCurve, CurveEntry{
			Game:      i + 1,
			Score:     res.Score,
			Accuracy:  res.Accuracy,
			Timestamp: res.Timestamp,
		})
	}
	n := float64(len(results))
	a.AverageScore = scoreSum / n
	a.AverageAccuracy = accSum / n
	a.AverageCompletionTime = timeSum / n
	a.ImprovementRate = improvementRate(results)
	a.RetentionCurve = e.retentionCurve(learnerID)
	return a, nil
}

// improvementRate compares the average score of the most recent
// sessions against the earliest ones, as a percentage. Until the
// history is longer than one comparison window there is nothing to
// compare against and the rate is 0.
func improvementRate(results []*game.Result) float64 {
	total := len(results)
	if total < 2 || total <= improvementWindow {
		return 0
	}
	recent := results[total-improvementWindow:]
	oldCount := improvementWindow
	if total-improvementWindow < oldCount {
		oldCount = total - improvementWindow
	}
	old := results[:oldCount]

	recentAvg := avgScore(recent)
	oldAvg := avgScore(old)
	if oldAvg == 0 {
		return 0
	}
	return (recentAvg - oldAvg) / oldAvg * 100
}

func avgScore(results []*game.Result) float64 {
	sum := 0.0
	for _, res := range results {
		sum += float64(res.Score)
	}
	return sum / float64(len(results))
}

// retentionCurve reuses the memory model's horizon predictions.
func (e *Engine) retentionCurve(learnerID string) []RetentionPoint {
	report := e.learner(learnerID).tracker.AnalyzeLearner(learnerID)
	points := make([]RetentionPoint, 0, len(report.Predictions))
	for _, p := range report.Predictions {
		points = append(points, RetentionPoint{
			IntervalDays:  p.Days,
			RetentionRate: p.RetentionRate,
		})
	}
	return points
}

// sessionHistory returns the learner's results in play order.
func (e *Engine) sessionHistory(ctx context.Context, learnerID string) ([]*game.Result, error) {
	if e.history == nil {
		ls := e.learner(learnerID)
		ls.resultsMu.Lock()
		results := append([]*game.Result(nil), ls.results...)
		ls.resultsMu.Unlock()
		return results, nil
	}
	newest, err := e.history.List(ctx, learnerID, 0)
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}
	results := make([]*game.Result, len(newest))
	for i, res := range newest {
		results[len(newest)-1-i] = res
	}
	return results, nil
}

// GEPTReport breaks the learner's memory state down by proficiency
// level.
type GEPTReport struct {
	LearnerID   string          `json:"learner_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Levels      []LevelProgress `json:"levels"`
	Readiness   string          `json:"readiness"`
}

// LevelProgress summarizes tracked items at one proficiency level.
type LevelProgress struct {
	Level           string  `json:"level"`
	ItemCount       int     `json:"item_count"`
	MasteredCount   int     `json:"mastered_count"`
	AverageStrength float64 `json:"average_strength"`
	Accuracy        float64 `json:"accuracy"`
	DueCount        int     `json:"due_count"`
}

// geptLevelOrder ranks the known proficiency levels for report output;
// unknown level names sort after them alphabetically.
var geptLevelOrder = map[string]int{
	"elementary":        0,
	"intermediate":      1,
	"high-intermediate": 2,
}

const levelUnspecified = "unspecified"

// GEPTReport groups the learner's tracked items by proficiency level
// and estimates readiness to advance.
func (e *Engine) GEPTReport(learnerID string) *GEPTReport {
	now := e.now()
	items := e.learner(learnerID).tracker.LearnerItems(learnerID)

	byLevel := make(map[string][]*memcurve.Item)
	for _, it := range items {
		level := it.GEPTLevel
		if level == "" {
			level = levelUnspecified
		}
		byLevel[level] = append(byLevel[level], it)
	}

	report := &GEPTReport{LearnerID: learnerID, GeneratedAt: now}
	for level, levelItems := range byLevel {
		p := LevelProgress{Level: level, ItemCount: len(levelItems)}
		var strengthSum, accSum float64
		for _, it := range levelItems {
			strengthSum += it.MemoryStrength
			accSum += it.Accuracy()
			if it.Status == memcurve.StatusMature {
				p.MasteredCount++
			}
			if it.Status != memcurve.StatusForgotten && it.IsDue(now) {
				p.DueCount++
			}
		}
		p.AverageStrength = strengthSum / float64(len(levelItems))
		p.Accuracy = accSum / float64(len(levelItems))
		report.Levels = append(report.Levels, p)
	}

	sort.Slice(report.Levels, func(i, j int) bool {
		return lessLevel(report.Levels[i].Level, report.Levels[j].Level)
	})
	report.Readiness = readiness(report.Levels)
	return report
}

func lessLevel(a, b string) bool {
	ra, aKnown := geptLevelOrder[a]
	rb, bKnown := geptLevelOrder[b]
	switch {
	case aKnown && bKnown:
		return ra < rb
	case aKnown:
		return true
	case bKnown:
		return false
	default:
		return a < b
	}
}

// readiness judges advancement from the highest known level the
// learner has items at.
func readiness(levels []LevelProgress) string {
	var current *LevelProgress
	for i := range levels {
		if _, known := geptLevelOrder[levels[i].Level]; known {
			current = &levels[i]
		}
	}
	if current == nil {
		return "no leveled items tracked yet"
	}
	mastery := float64(current.MasteredCount) / float64(current.ItemCount)
	switch {
	case mastery >= 0.8 && current.AverageStrength >= 0.7:
		return fmt.Sprintf("ready to advance beyond %s", current.Level)
	case current.AverageStrength < 0.4:
		return fmt.Sprintf("needs more review at %s", current.Level)
	default:
		return fmt.Sprintf("making progress at %s", current.Level)
	}
}
