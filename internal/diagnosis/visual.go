package diagnosis

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/abhisek/lexmatch/internal/content"
)

const (
	// visualLengthDelta is the maximum length difference for two texts
	// to be considered visually comparable.
	visualLengthDelta = 2

	// visualSimilarityThreshold is the minimum edit similarity
	// (exclusive) for a visual-confusion match.
	visualSimilarityThreshold = 0.6
)

// VisualConfusionClassifier flags mistakes between items that look
// alike: same kind, near-equal length, high edit similarity.
type VisualConfusionClassifier struct{}

func (c *VisualConfusionClassifier) Name() string { return "visual-confusion" }

func (c *VisualConfusionClassifier) Classify(input *ClassifyInput) (ErrorType, float64) {
	sim, ok := visualSimilarity(input.Left, input.Right)
	if !ok {
		return "", 0
	}
	return ErrorVisualConfusion, sim
}

// visualSimilarity reports whether two items look confusable and, if
// so, their edit similarity. Non-text items of matching kind get a
// neutral 0.5 since content comparison is meaningless for opaque refs.
func visualSimilarity(a, b content.Item) (float64, bool) {
	if a.Kind != b.Kind {
		return 0, false
	}
	if a.Kind != content.KindText {
		return 0.5, false
	}
	t1 := strings.ToLower(a.Content)
	t2 := strings.ToLower(b.Content)
	if abs(len(t1)-len(t2)) > visualLengthDelta {
		return 0, false
	}
	sim := levenshtein.Similarity(t1, t2, levenshtein.NewParams())
	if sim <= visualSimilarityThreshold {
		return 0, false
	}
	return sim, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
