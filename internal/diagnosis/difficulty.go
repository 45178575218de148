package diagnosis

// DifficultyMismatchAttempts is the attempt count (exclusive) under
// which early mistakes on expert difficulty point to a level mismatch
// rather than a content gap.
const DifficultyMismatchAttempts = 5

// DifficultyMismatchClassifier flags early errors on expert difficulty.
type DifficultyMismatchClassifier struct{}

func (c *DifficultyMismatchClassifier) Name() string { return "difficulty-mismatch" }

func (c *DifficultyMismatchClassifier) Classify(input *ClassifyInput) (ErrorType, float64) {
	if input.Context.Difficulty == "expert" && input.Context.TotalAttempts < DifficultyMismatchAttempts {
		return ErrorDifficultyMismatch, 0.8
	}
	return "", 0
}
