package diagnosis

// Classifier is a rule-based error classifier.
// Returns an error type and confidence (0.0–1.0), or ("", 0) if the
// rule doesn't apply.
type Classifier interface {
	Name() string
	Classify(input *ClassifyInput) (ErrorType, float64)
}

// DefaultClassifiers returns classifiers in priority order.
// Time pressure ranks highest: a mistake made in the closing seconds
// tells us more about the clock than about the learner's knowledge.
// Memory lapse is the fallback and always matches.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		&TimePressureClassifier{},
		&DifficultyMismatchClassifier{},
		&VisualConfusionClassifier{},
		&PhoneticClassifier{},
		&SemanticClassifier{},
		&MemoryLapseClassifier{},
	}
}

// RunClassifiers executes rule-based classifiers in order.
// Returns the first match, or ("", 0, "") if no rules apply.
func RunClassifiers(classifiers []Classifier, input *ClassifyInput) (ErrorType, float64, string) {
	for _, c := range classifiers {
		typ, conf := c.Classify(input)
		if typ != "" {
			return typ, clampConfidence(conf), c.Name()
		}
	}
	return "", 0, ""
}

func clampConfidence(c float64) float64 {
	if c < 0.1 {
		return 0.1
	}
	if c > 1.0 {
		return 1.0
	}
	return c
}
