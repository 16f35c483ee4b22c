package recentapps

import "time"

// Outcome is what happened to a single observer sample
type Outcome string

const (
	OutcomeEmitted    Outcome = "emitted"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeDropped    Outcome = "dropped"
	OutcomeEmpty      Outcome = "empty"
	OutcomeFailed     Outcome = "failed"
	OutcomeDiscarded  Outcome = "discarded"
)

// Recorder receives query and sample outcomes, typically to export metrics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveQuery(strategy string, elapsed time.Duration, err error)
	ObserveSample(observer string, outcome Outcome)
}

type nopRecorder struct{}

func (nopRecorder) ObserveQuery(string, time.Duration, error) {}
func (nopRecorder) ObserveSample(string, Outcome)             {}
