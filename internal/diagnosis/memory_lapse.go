package diagnosis

// MemoryLapseClassifier is the fallback: a wrong match that no other
// rule explains is attributed to forgetting. Always matches.
type MemoryLapseClassifier struct{}

func (c *MemoryLapseClassifier) Name() string { return "memory-lapse" }

func (c *MemoryLapseClassifier) Classify(_ *ClassifyInput) (ErrorType, float64) {
	return ErrorMemoryLapse, 0.5
}
