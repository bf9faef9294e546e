package pipeline

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestRunPassesResultThrough(t *testing.T) {
	stage := Stage[int, int]{
		Name: "double",
		Run:  func(in int) (int, error) { return in * 2, nil },
	}

	got, err := Run(stage, 21, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestRunPropagatesStageError(t *testing.T) {
	wantErr := errors.New("boom")
	stage := Stage[int, int]{
		Name: "fail",
		Run:  func(in int) (int, error) { return 0, wantErr },
	}

	_, err := Run(stage, 1, nil)
	if err != wantErr {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestRunLogsElapsedTimeWhenLoggerSet(t *testing.T) {
	log := logrus.New()
	stage := Stage[int, int]{
		Name: "noop",
		Run:  func(in int) (int, error) { return in, nil },
	}

	// Just exercises the logging branch; logrus.New() defaults to a real
	// writer so this should not panic regardless of level.
	if _, err := Run(stage, 1, log); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunCancelledByDebugProbe(t *testing.T) {
	stage := Stage[int, int]{
		Name:  "probe",
		Run:   func(in int) (int, error) { return in, nil },
		Debug: func(out int) Signal { return Cancel },
	}

	_, err := Run(stage, 1, nil)
	cancelled, ok := err.(*Cancelled)
	if !ok {
		t.Fatalf("err = %v (%T), want *Cancelled", err, err)
	}
	if cancelled.Stage != "probe" {
		t.Errorf("Stage = %q, want %q", cancelled.Stage, "probe")
	}
}

func TestRunContinuesWhenDebugProbeAllows(t *testing.T) {
	stage := Stage[int, int]{
		Name:  "probe",
		Run:   func(in int) (int, error) { return in, nil },
		Debug: func(out int) Signal { return Continue },
	}

	got, err := Run(stage, 7, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}
