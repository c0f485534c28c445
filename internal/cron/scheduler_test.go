package cron

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testJob is a minimal Job with a fixed name and schedule.
type testJob struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }
func (j *testJob) Run(ctx context.Context) error {
	if j.run != nil {
		return j.run(ctx)
	}
	return nil
}

func TestRegisterJobDuplicateName(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	if err := s.RegisterJob(&testJob{name: "refresh", schedule: "0 * * * *"}); err != nil {
		t.Fatalf("RegisterJob() error: %v", err)
	}

	err := s.RegisterJob(&testJob{name: "refresh", schedule: "*/5 * * * *"})
	if err == nil {
		t.Fatal("duplicate RegisterJob() = nil, want error")
	}
	if !strings.Contains(err.Error(), "refresh") {
		t.Errorf("error = %v, want job name included", err)
	}
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	if err := s.RegisterJob(&testJob{name: "bad", schedule: "not a cron expression"}); err != nil {
		t.Fatalf("RegisterJob() error: %v", err)
	}

	if err := s.Start(); err == nil {
		t.Error("Start() = nil, want error for invalid schedule")
	}
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	if err := s.RegisterJob(&testJob{name: "refresh", schedule: "0 * * * *"}); err != nil {
		t.Fatalf("RegisterJob() error: %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
}

func TestFiveFieldScheduleAccepted(t *testing.T) {
	t.Parallel()

	// The parser takes standard 5-field expressions, not 6-field ones
	// with seconds.
	s := NewScheduler(discardLogger())
	if err := s.RegisterJob(&testJob{name: "five", schedule: "*/5 * * * *"}); err != nil {
		t.Fatalf("RegisterJob() error: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Errorf("Start() error: %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	six := NewScheduler(discardLogger())
	if err := six.RegisterJob(&testJob{name: "six", schedule: "0 0 * * * *"}); err != nil {
		t.Fatalf("RegisterJob() error: %v", err)
	}
	if err := six.Start(); err == nil {
		t.Error("Start() = nil, want error for 6-field schedule")
	}
}
