package content

import (
	"encoding/json"
	"fmt"
	"os"
)

// FileSupplier loads a validated content pack from a JSON file.
type FileSupplier struct {
	pack *Pack
}

// LoadFile reads and validates a content pack. A pack that fails schema
// validation never produces a supplier; the error is fatal to session
// start.
func LoadFile(path string) (*FileSupplier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content pack: %w", err)
	}
	return Load(raw)
}

// Load validates and parses raw pack JSON.
func Load(raw []byte) (*FileSupplier, error) {
	if err := validatePack(raw); err != nil {
		return nil, fmt.Errorf("content pack %w", err)
	}
	var pack Pack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return nil, fmt.Errorf("parse content pack: %w", err)
	}
	return &FileSupplier{pack: &pack}, nil
}

// NewStaticSupplier wraps an in-memory pair list. Used by tests and by
// callers that assemble pairs programmatically.
func NewStaticSupplier(pairs []Pair) *FileSupplier {
	return &FileSupplier{pack: &Pack{Name: "static", Pairs: pairs}}
}

// Pairs returns up to limit pairs from the pack; limit <= 0 means all.
func (s *FileSupplier) Pairs(limit int) ([]Pair, error) {
	pairs := s.pack.Pairs
	if limit > 0 && limit < len(pairs) {
		pairs = pairs[:limit]
	}
	out := make([]Pair, len(pairs))
	copy(out, pairs)
	return out, nil
}

// Pack returns pack metadata.
func (s *FileSupplier) Pack() Pack {
	return *s.pack
}
