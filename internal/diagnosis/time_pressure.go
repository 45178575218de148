package diagnosis

// TimePressureThresholdSec is the remaining time (exclusive) below
// which a wrong match is attributed to the clock.
const TimePressureThresholdSec = 30

// timePressureUrgentSec marks the final-seconds window where the
// attribution is near certain.
const timePressureUrgentSec = 10

// TimePressureClassifier flags mistakes made while the countdown is in
// its final stretch. Untimed sessions (timeRemaining 0) never match.
type TimePressureClassifier struct{}

func (c *TimePressureClassifier) Name() string { return "time-pressure" }

func (c *TimePressureClassifier) Classify(input *ClassifyInput) (ErrorType, float64) {
	remaining := input.Context.TimeRemaining
	if remaining <= 0 || remaining >= TimePressureThresholdSec {
		return "", 0
	}
	if remaining < timePressureUrgentSec {
		return ErrorTimePressure, 0.9
	}
	return ErrorTimePressure, 0.7
}
