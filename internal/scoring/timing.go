package scoring

import "time"

// Timing flags recorded on attempts whose client-reported duration was adjusted.
const (
	TimingNegative        = "negative_time"
	TimingZeroWithAnswers = "zero_time_with_answers"
	TimingExceedsElapsed  = "exceeds_elapsed"
)

// elapsedSlack tolerates clock skew between client and server.
const elapsedSlack = 60

// SanitizeTiming treats timeSpent as untrusted telemetry. It returns the value
// to store and a flag naming the adjustment, or "" when the value was kept.
// The wall-clock span between startedAt and completedAt is the fallback when
// it is usable.
func SanitizeTiming(timeSpent, answered int, startedAt, completedAt time.Time) (int, string) {
	elapsed, elapsedOK := elapsedSeconds(startedAt, completedAt)

	switch {
	case timeSpent < 0:
		if elapsedOK {
			return elapsed, TimingNegative
		}
		return 0, TimingNegative
	case timeSpent == 0 && answered > 0:
		if elapsedOK && elapsed > 0 {
			return elapsed, TimingZeroWithAnswers
		}
		return 0, TimingZeroWithAnswers
	case elapsedOK && timeSpent > elapsed+elapsedSlack:
		return elapsed, TimingExceedsElapsed
	}
	return timeSpent, ""
}

func elapsedSeconds(startedAt, completedAt time.Time) (int, bool) {
	if startedAt.IsZero() || completedAt.IsZero() || startedAt.After(completedAt) {
		return 0, false
	}
	return int(completedAt.Sub(startedAt) / time.Second), true
}
