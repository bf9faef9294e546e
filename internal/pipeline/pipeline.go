// Package pipeline composes the driver's lex/parse/analyse/optimise/
// run sequence as a chain of named stages, each timed independently
// when --profile is set (§4.7), following the reference Stage/
// StageContext shape but collapsed to a single generic function type
// since Go stages don't need the Rust trait's associated-type error
// bound.
package pipeline

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Signal is returned by a debug probe to say whether the pipeline
// should keep going.
type Signal int

const (
	Continue Signal = iota
	Cancel
)

// Stage wraps a single pipeline step with a name (used for --profile
// timing) and an optional debug probe invoked with the step's output.
type Stage[In, Out any] struct {
	Name  string
	Run   func(In) (Out, error)
	Debug func(Out) Signal
}

// Cancelled is returned by Run when a stage's debug probe requested
// Cancel; the driver treats this as a clean, zero-exit-code stop.
type Cancelled struct {
	Stage string
}

func (c *Cancelled) Error() string { return "pipeline cancelled after stage " + c.Stage }

// Run executes stage against in, recording its elapsed wall-clock time
// into log (when non-nil) under stage.Name, then invokes the debug
// probe if set.
func Run[In, Out any](stage Stage[In, Out], in In, log *logrus.Logger) (Out, error) {
	start := time.Now()
	out, err := stage.Run(in)
	elapsed := time.Since(start)

	if log != nil {
		log.WithFields(logrus.Fields{
			"stage":   stage.Name,
			"elapsed": elapsed,
		}).Info("stage complete")
	}

	if err != nil {
		var zero Out
		return zero, err
	}

	if stage.Debug != nil && stage.Debug(out) == Cancel {
		return out, &Cancelled{Stage: stage.Name}
	}

	return out, nil
}
