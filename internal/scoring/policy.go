// Package scoring implements the late-penalty scoring policy. The policy is
// pure: persistence of the resulting score is the caller's responsibility.
package scoring

import "time"

// DefaultLateMultiplier is applied to the raw score of late submissions.
const DefaultLateMultiplier = 0.5

// Policy turns a raw oracle score into the recorded integer score.
type Policy struct {
	lateMultiplier float64
}

// NewPolicy builds a policy with the given late multiplier. Values outside
// (0, 1] fall back to DefaultLateMultiplier.
func NewPolicy(lateMultiplier float64) Policy {
	if lateMultiplier <= 0 || lateMultiplier > 1 {
		lateMultiplier = DefaultLateMultiplier
	}
	return Policy{lateMultiplier: lateMultiplier}
}

// Default returns the policy with the standard half-credit late penalty.
func Default() Policy {
	return NewPolicy(DefaultLateMultiplier)
}

// IsLate reports whether a submission instant falls on a calendar day
// strictly after the due date. Submitting any time on the due date itself,
// including exactly at midnight, is on time.
func (p Policy) IsLate(submittedAt, due time.Time) bool {
	return calendarDay(submittedAt.In(due.Location())).After(calendarDay(due))
}

// Score computes the recorded score for a raw oracle score. Late submissions
// are multiplied by the late multiplier; the result is truncated toward zero,
// matching integer-cast semantics.
func (p Policy) Score(raw float64, submittedAt, due time.Time) int {
	multiplier := 1.0
	if p.IsLate(submittedAt, due) {
		multiplier = p.lateMultiplier
	}
	return int(raw * multiplier)
}

// FullCreditScore returns the score a maximally correct answer would record
// under the given timing. Export status derivation compares stored scores
// against this instead of assuming a fixed penalty fraction.
func (p Policy) FullCreditScore(maxScore int, late bool) int {
	if late {
		return int(float64(maxScore) * p.lateMultiplier)
	}
	return maxScore
}

func calendarDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
