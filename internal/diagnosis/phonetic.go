package diagnosis

import (
	"strings"

	"github.com/abhisek/lexmatch/internal/content"
)

// phoneticPairs lists consonant substitutions that sound alike to
// learners whose first language does not distinguish them.
var phoneticPairs = [][2]string{
	{"b", "p"}, {"d", "t"}, {"g", "k"},
	{"v", "f"}, {"z", "s"}, {"th", "s"},
	{"l", "r"}, {"m", "n"},
}

// PhoneticClassifier flags mistakes between text items whose contents
// contain a known sound-alike consonant pair.
type PhoneticClassifier struct{}

func (c *PhoneticClassifier) Name() string { return "phonetic" }

func (c *PhoneticClassifier) Classify(input *ClassifyInput) (ErrorType, float64) {
	if !phoneticallySimilar(input.Left, input.Right) {
		return "", 0
	}
	return ErrorPhonetic, 0.8
}

func phoneticallySimilar(a, b content.Item) bool {
	if a.Kind != content.KindText || b.Kind != content.KindText {
		return false
	}
	t1 := strings.ToLower(a.Content)
	t2 := strings.ToLower(b.Content)
	for _, pair := range phoneticPairs {
		if (strings.Contains(t1, pair[0]) && strings.Contains(t2, pair[1])) ||
			(strings.Contains(t1, pair[1]) && strings.Contains(t2, pair[0])) {
			return true
		}
	}
	return false
}
