// Package grader defines the grading oracle contract. The oracle receives
// submitted SQL text and a question identifier and returns a raw score; the
// late-penalty policy is applied by the caller.
package grader

import "context"

// Grader scores submitted SQL against a question. A non-nil error means the
// attempt must not be recorded; callers never substitute a zero score.
type Grader interface {
	Grade(ctx context.Context, sql string, questionID uint) (float64, error)
}

// Static returns a fixed score for every submission. Used in development
// and tests where no oracle is reachable.
type Static struct {
	Score float64
}

// Grade implements Grader.
func (s Static) Grade(_ context.Context, _ string, _ uint) (float64, error) {
	return s.Score, nil
}
