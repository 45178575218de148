package diagnosis

import (
	"strings"

	"github.com/abhisek/lexmatch/internal/content"
)

// semanticGroups are related-meaning word clusters. Two texts that both
// touch one cluster suggest the learner understood the topic but mixed
// up members within it.
var semanticGroups = [][]string{
	{"cat", "dog", "animal", "pet"},
	{"red", "blue", "green", "color", "colour"},
	{"big", "large", "huge", "small", "tiny"},
	{"happy", "sad", "angry", "emotion", "feeling"},
	{"car", "bus", "train", "transport", "vehicle"},
	{"apple", "banana", "fruit", "food", "eat"},
	{"school", "teacher", "student", "education", "learn"},
}

// SemanticClassifier flags mistakes between text items that fall in the
// same meaning cluster.
type SemanticClassifier struct{}

func (c *SemanticClassifier) Name() string { return "semantic" }

func (c *SemanticClassifier) Classify(input *ClassifyInput) (ErrorType, float64) {
	if !semanticallyRelated(input.Left, input.Right) {
		return "", 0
	}
	return ErrorSemantic, 0.7
}

func semanticallyRelated(a, b content.Item) bool {
	if a.Kind != content.KindText || b.Kind != content.KindText {
		return false
	}
	t1 := strings.ToLower(a.Content)
	t2 := strings.ToLower(b.Content)
	for _, group := range semanticGroups {
		if containsAny(t1, group) && containsAny(t2, group) {
			return true
		}
	}
	return false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
