package app

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/pickup-games/internal/platform/logging"
	"github.com/riskibarqy/pickup-games/internal/usecase"
)

type stubStarter struct {
	result usecase.StartDueGamesResult
	err    error
	input  usecase.StartDueGamesInput
	calls  int
}

func (s *stubStarter) StartDueGames(_ context.Context, input usecase.StartDueGamesInput) (usecase.StartDueGamesResult, error) {
	s.calls++
	s.input = input
	return s.result, s.err
}

type recordingObserver struct {
	started, skipped, failed int
	calls                    int
}

func (o *recordingObserver) ObserveAutoStart(started, skipped, failed int) {
	o.calls++
	o.started, o.skipped, o.failed = started, skipped, failed
}

func TestSweeper_SweepReportsCounts(t *testing.T) {
	t.Parallel()

	starter := &stubStarter{result: usecase.StartDueGamesResult{Candidates: 3, StartedCount: 2, SkippedCount: 1}}
	observer := &recordingObserver{}
	input := usecase.StartDueGamesInput{Limit: 10, MaxWorkers: 2}

	s, err := NewSweeper("@every 1m", starter, observer, input, logging.NewNop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	s.sweep()

	if starter.calls != 1 || starter.input != input {
		t.Fatalf("unexpected starter call: calls=%d input=%+v", starter.calls, starter.input)
	}
	if observer.calls != 1 || observer.started != 2 || observer.skipped != 1 || observer.failed != 0 {
		t.Fatalf("unexpected observation: %+v", observer)
	}
}

func TestSweeper_SweepErrorSkipsObservation(t *testing.T) {
	t.Parallel()

	starter := &stubStarter{err: errors.New("db down")}
	observer := &recordingObserver{}

	s, err := NewSweeper("@every 1m", starter, observer, usecase.StartDueGamesInput{}, logging.NewNop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	s.sweep()

	if observer.calls != 0 {
		t.Fatalf("expected no observation after failed sweep, got %d", observer.calls)
	}
}

func TestNewSweeper_RejectsBadSchedule(t *testing.T) {
	t.Parallel()

	if _, err := NewSweeper("not a schedule", &stubStarter{}, nil, usecase.StartDueGamesInput{}, logging.NewNop()); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestSweeper_StopWithoutStart(t *testing.T) {
	t.Parallel()

	s, err := NewSweeper("@every 1m", &stubStarter{}, nil, usecase.StartDueGamesInput{}, logging.NewNop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	s.Start()
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
