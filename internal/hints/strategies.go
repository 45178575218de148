package hints

import (
	"github.com/abhisek/lexmatch/internal/content"
	"github.com/abhisek/lexmatch/internal/diagnosis"
)

// Strategy is one (predicate, generator) rule. Strategies are tried in
// descending priority; the first whose Applies returns true generates
// the hint.
type Strategy struct {
	Name     string
	Priority int
	Applies  func(*Request) bool
	Generate func(*Request) Hint
}

// urgentTimeSec is the remaining time below which time-pressure relief
// switches from strategy advice to direct elimination.
const urgentTimeSec = 10

// DefaultStrategies returns the strategy table in priority order. The
// default strategy always applies, so selection never fails.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name:     "error-pattern-guided",
			Priority: 10,
			Applies:  func(r *Request) bool { return len(r.Profile.ErrorHistory) > 3 },
			Generate: errorPatternHint,
		},
		{
			Name:     "time-pressure-relief",
			Priority: 9,
			Applies:  func(r *Request) bool { return r.Game.TimeRemaining > 0 && r.Game.TimeRemaining < 30 },
			Generate: timePressureHint,
		},
		{
			Name:     "streak-breaker",
			Priority: 8,
			Applies:  func(r *Request) bool { return r.Game.CurrentStreak == 0 && r.Game.TotalAttempts > 2 },
			Generate: streakBreakerHint,
		},
		{
			Name:     "difficulty-adaptive",
			Priority: 7,
			Applies:  func(*Request) bool { return true },
			Generate: difficultyAdaptiveHint,
		},
		{
			Name:     "gept-level-specific",
			Priority: 6,
			Applies:  func(r *Request) bool { return r.Game.GEPTLevel != "" },
			Generate: geptLevelHint,
		},
		{
			Name:     "learning-preference",
			Priority: 5,
			Applies:  func(r *Request) bool { return len(r.Profile.LearningPreferences) > 0 },
			Generate: learningPreferenceHint,
		},
		{
			Name:     "default",
			Priority: 1,
			Applies:  func(*Request) bool { return true },
			Generate: defaultHint,
		},
	}
}

// errorPatternHint targets the learner's dominant error type.
func errorPatternHint(r *Request) Hint {
	var dominant diagnosis.ErrorType
	if len(r.Profile.DominantErrorTypes) > 0 {
		dominant = r.Profile.DominantErrorTypes[0]
	}
	switch dominant {
	case diagnosis.ErrorVisualConfusion:
		return Hint{
			Level:   LevelModerate,
			Kind:    KindVisual,
			Message: "look closely at small spelling differences between similar items",
			VisualCues: &VisualCues{
				HighlightItems: r.SelectedItems,
				ColorScheme:    "attention",
				Animation:      "pulse",
			},
		}
	case diagnosis.ErrorTimePressure:
		return Hint{
			Level:      LevelStrong,
			Kind:       KindTextual,
			Message:    "take a breath and slow down; accuracy matters more than speed",
			VisualCues: &VisualCues{ColorScheme: "calm", Animation: "breathe"},
		}
	case diagnosis.ErrorSemantic:
		return Hint{
			Level:   LevelModerate,
			Kind:    KindContextual,
			Message: "think about what each word really means and where it is used",
			VisualCues: &VisualCues{
				HighlightItems: r.SelectedItems,
				ColorScheme:    "semantic",
			},
		}
	case diagnosis.ErrorMemoryLapse:
		return Hint{
			Level:      LevelModerate,
			Kind:       KindAssociation,
			Message:    "build an association; what do these items have in common?",
			VisualCues: &VisualCues{Animation: "connect"},
		}
	default:
		return defaultHint(r)
	}
}

// timePressureHint eases clock stress, escalating in the final seconds.
func timePressureHint(r *Request) Hint {
	if r.Game.TimeRemaining < urgentTimeSec {
		return Hint{
			Level:   LevelDirect,
			Kind:    KindElimination,
			Message: "time is almost up; lock in the pairs you are surest of",
			VisualCues: &VisualCues{
				HighlightItems: likelyPairItems(r),
				ColorScheme:    "urgent",
				Animation:      "flash",
			},
			AudioCues: &AudioCues{SoundEffect: "urgent-beep"},
		}
	}
	return Hint{
		Level:      LevelStrong,
		Kind:       KindTextual,
		Message:    "there is still time; start with the matches you are certain about",
		VisualCues: &VisualCues{ColorScheme: "warning", Animation: "steady-pulse"},
	}
}

// streakBreakerHint resets a learner stuck in consecutive misses.
func streakBreakerHint(r *Request) Hint {
	return Hint{
		Level:   LevelStrong,
		Kind:    KindContextual,
		Message: "pause and rescan every option; first impressions can mislead",
		VisualCues: &VisualCues{
			HighlightItems: itemIDs(r.CurrentItems),
			ColorScheme:    "reset",
			Animation:      "fade-in",
		},
		AudioCues: &AudioCues{SoundEffect: "gentle-chime"},
	}
}

func difficultyAdaptiveHint(r *Request) Hint {
	switch r.Game.Difficulty {
	case "easy":
		return Hint{
			Level:      LevelSubtle,
			Kind:       KindVisual,
			Message:    "trust your instinct; matches at this level are usually direct",
			VisualCues: &VisualCues{ColorScheme: "encouraging", Animation: "gentle-glow"},
		}
	case "medium":
		return Hint{
			Level:      LevelModerate,
			Kind:       KindTextual,
			Message:    "think about how the items relate; it may not be the obvious pairing",
			VisualCues: &VisualCues{ColorScheme: "thoughtful"},
		}
	case "hard":
		return Hint{
			Level:      LevelStrong,
			Kind:       KindContextual,
			Message:    "this level rewards deeper understanding; consider secondary meanings",
			VisualCues: &VisualCues{ColorScheme: "analytical", Animation: "slow-pulse"},
		}
	case "expert":
		return Hint{
			Level:      LevelModerate,
			Kind:       KindElimination,
			Message:    "rule out the clearly wrong options and focus on fine distinctions",
			VisualCues: &VisualCues{ColorScheme: "expert", Animation: "precise-highlight"},
		}
	default:
		return defaultHint(r)
	}
}

func geptLevelHint(r *Request) Hint {
	switch r.Game.GEPTLevel {
	case "elementary":
		return Hint{
			Level:      LevelModerate,
			Kind:       KindTextual,
			Message:    "elementary words map directly; think of everyday usage",
			VisualCues: &VisualCues{ColorScheme: "elementary"},
		}
	case "intermediate":
		return Hint{
			Level:      LevelModerate,
			Kind:       KindContextual,
			Message:    "intermediate words can carry several meanings; pick the most common one",
			VisualCues: &VisualCues{ColorScheme: "intermediate"},
		}
	case "high-intermediate":
		return Hint{
			Level:      LevelStrong,
			Kind:       KindAssociation,
			Message:    "at this level collocation and register matter; is the word formal or casual?",
			VisualCues: &VisualCues{ColorScheme: "advanced"},
		}
	default:
		return defaultHint(r)
	}
}

func learningPreferenceHint(r *Request) Hint {
	for _, pref := range r.Profile.LearningPreferences {
		switch pref {
		case "visual":
			return Hint{
				Level:   LevelModerate,
				Kind:    KindVisual,
				Message: "study the visual features and layout patterns of the items",
				VisualCues: &VisualCues{
					HighlightItems: itemIDs(r.CurrentItems),
					ColorScheme:    "visual-learner",
					Animation:      "pattern-highlight",
				},
			}
		case "auditory":
			return Hint{
				Level:     LevelModerate,
				Kind:      KindAudio,
				Message:   "say the words silently and listen for the ones that belong together",
				AudioCues: &AudioCues{SoundEffect: "soft-chime", VoiceText: "listen to each word's sound"},
			}
		}
	}
	return defaultHint(r)
}

// defaultHint escalates its level with the number of hints already used
// in the session.
func defaultHint(r *Request) Hint {
	var level Level
	switch r.Game.HintsUsed {
	case 0:
		level = LevelSubtle
	case 1:
		level = LevelModerate
	case 2:
		level = LevelStrong
	default:
		level = LevelDirect
	}
	messages := map[Level]string{
		LevelSubtle:   "look carefully; the answer is in front of you",
		LevelModerate: "think about how these items relate to each other",
		LevelStrong:   "focus on the pairing you are most confident about",
		LevelDirect:   "pick the two most obviously related items and match them",
	}
	return Hint{
		Level:      level,
		Kind:       KindTextual,
		Message:    messages[level],
		VisualCues: &VisualCues{ColorScheme: "neutral"},
	}
}

func likelyPairItems(r *Request) []string {
	items := r.CurrentItems
	if len(items) > 2 {
		items = items[:2]
	}
	return itemIDs(items)
}

func itemIDs(items []content.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
