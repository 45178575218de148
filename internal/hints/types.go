package hints

import (
	"time"

	"github.com/abhisek/lexmatch/internal/content"
	"github.com/abhisek/lexmatch/internal/diagnosis"
)

// Level grades how much a hint gives away.
type Level string

const (
	LevelSubtle   Level = "subtle"
	LevelModerate Level = "moderate"
	LevelStrong   Level = "strong"
	LevelDirect   Level = "direct"
)

// Kind is the delivery channel a hint targets.
type Kind string

const (
	KindVisual      Kind = "visual"
	KindTextual     Kind = "textual"
	KindAudio       Kind = "audio"
	KindContextual  Kind = "contextual"
	KindElimination Kind = "elimination"
	KindAssociation Kind = "association"
)

// VisualCues describes presentation-layer highlighting for a hint.
type VisualCues struct {
	HighlightItems []string `json:"highlight_items,omitempty"`
	ColorScheme    string   `json:"color_scheme,omitempty"`
	Animation      string   `json:"animation,omitempty"`
}

// AudioCues describes optional sound accompaniment for a hint.
type AudioCues struct {
	SoundEffect string `json:"sound_effect,omitempty"`
	VoiceText   string `json:"voice_text,omitempty"`
}

// Hint is one generated hint plus its post-hoc effectiveness tracking.
type Hint struct {
	ID            string      `json:"id"`
	GeneratedAt   time.Time   `json:"generated_at"`
	Level         Level       `json:"level"`
	Kind          Kind        `json:"kind"`
	Message       string      `json:"message"`
	Strategy      string      `json:"strategy"`
	VisualCues    *VisualCues `json:"visual_cues,omitempty"`
	AudioCues     *AudioCues  `json:"audio_cues,omitempty"`
	UsageCount    int         `json:"usage_count,omitempty"`
	SuccessRate   float64     `json:"success_rate,omitempty"`
	Effectiveness float64     `json:"effectiveness,omitempty"`
}

// GameContext is the live session state a hint request sees.
type GameContext struct {
	GameMode      string
	Difficulty    string
	GEPTLevel     content.GEPTLevel
	TimeRemaining int // seconds; 0 means untimed
	CurrentStreak int
	TotalAttempts int
	HintsUsed     int
}

// LearnerProfile is the per-learner history a hint request sees.
type LearnerProfile struct {
	ErrorHistory        []*diagnosis.Record
	DominantErrorTypes  []diagnosis.ErrorType
	LearningPreferences []string
}

// Request carries everything a strategy needs to generate a hint.
type Request struct {
	Profile       LearnerProfile
	Game          GameContext
	CurrentItems  []content.Item
	SelectedItems []string
}
