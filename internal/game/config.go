package game

import (
	"errors"
	"fmt"

	"github.com/abhisek/lexmatch/internal/content"
	"github.com/abhisek/lexmatch/internal/scoring"
)

// Mode is the pairing layout of a match session.
type Mode string

const (
	ModeTextText   Mode = "text-text"
	ModeTextImage  Mode = "text-image"
	ModeImageImage Mode = "image-image"
	ModeAudioText  Mode = "audio-text"
	ModeTextAudio  Mode = "text-audio"
	ModeMixed      Mode = "mixed"
)

// Validation failures reported before any session state is created.
var (
	ErrPairCountOutOfRange = errors.New("pair count must be between 4 and 20")
	ErrTimeLimitTooShort   = errors.New("time limit must be at least 30 seconds")
	ErrNoPairs             = errors.New("session needs at least one pair")
	ErrIncompletePair      = errors.New("pair is missing an item")
	ErrNoSession           = errors.New("no active session")
)

const (
	minPairCount    = 4
	maxPairCount    = 20
	minTimeLimitSec = 30

	// defaultExtensionSec is the time added by one adaptive extension.
	defaultExtensionSec = 15

	// hintScorePenalty is deducted from the score per requested hint.
	hintScorePenalty = 20
)

// Config describes one match session.
type Config struct {
	Mode           Mode
	Difficulty     string
	GEPTLevel      content.GEPTLevel
	PairCount      int
	TimeLimitSec   int // 0 means untimed
	AllowHints     bool
	ShuffleItems   bool
	PenaltyTimeSec int // seconds deducted per wrong match; 0 disables
	ExtensionSec   int // seconds per adaptive extension; 0 uses the default
	MaxExtensions  int
	Scoring        scoring.Config
}

// Validate rejects configurations that must never start a session.
func (c *Config) Validate() error {
	if c.PairCount < minPairCount || c.PairCount > maxPairCount {
		return fmt.Errorf("%w, got %d", ErrPairCountOutOfRange, c.PairCount)
	}
	if c.TimeLimitSec != 0 && c.TimeLimitSec < minTimeLimitSec {
		return fmt.Errorf("%w, got %d", ErrTimeLimitTooShort, c.TimeLimitSec)
	}
	if !c.Scoring.Mode.Valid() {
		return fmt.Errorf("unknown scoring mode %q", c.Scoring.Mode)
	}
	return nil
}

func (c *Config) extensionSec() int {
	if c.ExtensionSec > 0 {
		return c.ExtensionSec
	}
	return defaultExtensionSec
}

// validatePairs rejects empty or half-formed pair lists.
func validatePairs(pairs []content.Pair) error {
	if len(pairs) == 0 {
		return ErrNoPairs
	}
	for _, p := range pairs {
		if p.Left.ID == "" || p.Right.ID == "" {
			return fmt.Errorf("%w: pair %q", ErrIncompletePair, p.ID)
		}
	}
	return nil
}
