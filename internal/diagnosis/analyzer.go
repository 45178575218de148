package diagnosis

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
)

// maxTrendWindow is how many recent same-type errors feed the trend
// comparison.
const maxTrendWindow = 10

// Analyzer records wrong matches, classifies them through the rule
// chain, and aggregates per-type patterns. One analyzer per learner.
type Analyzer struct {
	classifiers []Classifier
	history     []*Record
	patterns    map[ErrorType]*Pattern
	entropy     *rand.Rand
	now         func() time.Time
}

// NewAnalyzer creates an analyzer with the default rule chain.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		classifiers: DefaultClassifiers(),
		patterns:    make(map[ErrorType]*Pattern),
		entropy:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// SetClock overrides the analyzer's time source for tests.
func (a *Analyzer) SetClock(now func() time.Time) {
	a.now = now
}

// RecordError classifies and logs one wrong match, updating the
// aggregate pattern for the inferred type.
func (a *Analyzer) RecordError(input *ClassifyInput, responseTimeMs int) *Record {
	typ, conf, name := RunClassifiers(a.classifiers, input)
	rec := &Record{
		ID:           a.newID(),
		Timestamp:    a.now(),
		Left:         input.Left,
		Right:        input.Right,
		CorrectPair:  input.CorrectPair,
		ErrorType:    typ,
		ResponseTime: responseTimeMs,
		Confidence:   conf,
		Classifier:   name,
		Context:      input.Context,
	}
	a.history = append(a.history, rec)
	a.updatePattern(rec)
	return rec
}

func (a *Analyzer) newID() string {
	return ulid.MustNew(ulid.Timestamp(a.now()), a.entropy).String()
}

// History returns the append-only error log.
func (a *Analyzer) History() []*Record {
	return a.history
}

// Patterns returns the aggregated patterns, sorted by frequency
// descending for stable output.
func (a *Analyzer) Patterns() []*Pattern {
	patterns := make([]*Pattern, 0, len(a.patterns))
	for _, p := range a.patterns {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Frequency != patterns[j].Frequency {
			return patterns[i].Frequency > patterns[j].Frequency
		}
		return patterns[i].ErrorType < patterns[j].ErrorType
	})
	return patterns
}

// Clear erases the error log and all aggregates.
func (a *Analyzer) Clear() {
	a.history = nil
	a.patterns = make(map[ErrorType]*Pattern)
}

func (a *Analyzer) updatePattern(rec *Record) {
	p := a.patterns[rec.ErrorType]
	if p == nil {
		p = &Pattern{
			ErrorType: rec.ErrorType,
			Severity:  SeverityLow,
			Trend:     TrendStable,
		}
		a.patterns[rec.ErrorType] = p
	}
	p.Frequency++
	p.AverageResponseTime = (p.AverageResponseTime*float64(p.Frequency-1) + float64(rec.ResponseTime)) / float64(p.Frequency)

	ctx := fmt.Sprintf("%s-%s", rec.Context.GameMode, rec.Context.Difficulty)
	if !containsString(p.Contexts, ctx) {
		p.Contexts = append(p.Contexts, ctx)
	}

	p.Severity = severityFor(p.Frequency)
	p.Trend = a.trendFor(rec.ErrorType)
	p.Recommendations = patternRecommendations(p.ErrorType)
}

func severityFor(frequency int) Severity {
	switch {
	case frequency >= 10:
		return SeverityHigh
	case frequency >= 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// trendFor compares the response times of the first and second halves
// of the last 10 same-type errors. Fewer than 5 samples reads as
// stable.
func (a *Analyzer) trendFor(typ ErrorType) Trend {
	var recent []*Record
	for _, rec := range a.history {
		if rec.ErrorType == typ {
			recent = append(recent, rec)
		}
	}
	if len(recent) > maxTrendWindow {
		recent = recent[len(recent)-maxTrendWindow:]
	}
	if len(recent) < 5 {
		return TrendStable
	}

	half := len(recent) / 2
	first := avgResponseTime(recent[:half])
	second := avgResponseTime(recent[half:])
	switch {
	case second < first*0.9:
		return TrendImproving
	case second > first*1.1:
		return TrendWorsening
	default:
		return TrendStable
	}
}

func avgResponseTime(recs []*Record) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range recs {
		sum += float64(r.ResponseTime)
	}
	return sum / float64(len(recs))
}

func patternRecommendations(typ ErrorType) []string {
	switch typ {
	case ErrorVisualConfusion:
		return []string{
			"look closely at spelling differences before choosing",
			"slow down instead of matching on first glance",
		}
	case ErrorTimePressure:
		return []string{
			"practice in untimed mode to build accuracy first",
			"budget time per pair rather than racing the clock",
		}
	case ErrorSemantic:
		return []string{
			"study word meanings within their topic groups",
			"read example sentences to separate related words",
		}
	case ErrorMemoryLapse:
		return []string{
			"use association tricks to anchor weak items",
			"repeat short review sessions to consolidate memory",
		}
	case ErrorPhonetic:
		return []string{
			"drill minimal pairs that differ by one sound",
			"listen and repeat to sharpen sound discrimination",
		}
	case ErrorCulturalGap:
		return []string{
			"read about the cultural background of these items",
			"seek exposure to native material on the topic",
		}
	case ErrorDifficultyMismatch:
		return []string{
			"step down one difficulty level and rebuild from there",
			"consolidate the basics before retrying expert mode",
		}
	default:
		return nil
	}
}

// AnalyzePatterns produces the full analysis over everything recorded
// so far. Safe to call with an empty history.
func (a *Analyzer) AnalyzePatterns() *AnalysisResult {
	result := &AnalysisResult{
		TotalErrors: len(a.history),
		Patterns:    a.Patterns(),
	}
	if len(a.history) == 0 {
		result.Recommendations = []string{"no error data recorded yet"}
		return result
	}

	var attemptSum int
	for _, rec := range a.history {
		attemptSum += rec.Context.TotalAttempts
	}
	avgAttempts := float64(attemptSum) / float64(len(a.history))
	if avgAttempts > 0 {
		result.ErrorRate = float64(len(a.history)) / avgAttempts
	}

	for i, p := range result.Patterns {
		if i == 3 {
			break
		}
		result.DominantErrorTypes = append(result.DominantErrorTypes, p.ErrorType)
	}

	result.Insights = a.insights(result.Patterns)
	result.Recommendations = dedupRecommendations(result.Patterns)
	for _, p := range result.Patterns {
		if p.Severity == SeverityHigh && p.Trend == TrendWorsening {
			result.LearningGaps = append(result.LearningGaps, p.ErrorType)
		}
		if p.Frequency <= 2 {
			result.Strengths = append(result.Strengths, p.ErrorType)
		}
	}
	return result
}

func (a *Analyzer) insights(patterns []*Pattern) []string {
	var insights []string
	if len(patterns) > 0 {
		top := patterns[0]
		insights = append(insights, fmt.Sprintf("most frequent error type is %s (%d occurrences)", top.ErrorType, top.Frequency))
	}
	for _, p := range patterns {
		switch {
		case p.Severity == SeverityHigh:
			insights = append(insights, fmt.Sprintf("%s errors have reached high severity", p.ErrorType))
		case p.Trend == TrendWorsening:
			insights = append(insights, fmt.Sprintf("%s errors are getting slower over time", p.ErrorType))
		case p.Trend == TrendImproving:
			insights = append(insights, fmt.Sprintf("%s errors are resolving faster, keep it up", p.ErrorType))
		}
	}
	return insights
}

func dedupRecommendations(patterns []*Pattern) []string {
	seen := make(map[string]bool)
	var recs []string
	for _, p := range patterns {
		for _, r := range p.Recommendations {
			if !seen[r] {
				seen[r] = true
				recs = append(recs, r)
			}
		}
	}
	return recs
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
