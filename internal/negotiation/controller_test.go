package negotiation

import (
	"context"
	"testing"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/errors"
	"github.com/parleyhq/parley/internal/logging"
)

func newController(t *testing.T, roster *Roster, bus *Bus, budget, retryBound int) *RetryController {
	t.Helper()
	v := NewValidator()
	s := NewTurnScheduler(roster, bus, v, budget, logging.NewDiscard())
	return NewRetryController(s, v, roster, bus, retryBound, logging.NewDiscard())
}

func TestControllerCompletesOnValidFirstAttempt(t *testing.T) {
	roster := generatedRoster(t, map[string][]string{
		"moderator": {
			"プランXでどうでしょう",
			"【合意確定】\n【最終合意プラン】プランX",
		},
		"traveler_A": {"賛成です"},
	}, "moderator", "traveler_A")

	bus := NewBus()
	out := newController(t, roster, bus, 50, 2).Run(context.Background())

	if out.State != StateCompleted {
		t.Fatalf("state = %q, want completed", out.State)
	}
	if out.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", out.Attempts)
	}
	if !out.Validation.Valid || out.Validation.CandidateIndex != 2 {
		t.Errorf("validation = %+v", out.Validation)
	}
}

func TestControllerRetriesInvalidCandidateThenFails(t *testing.T) {
	// The moderator declares immediately, so no one ever affirms: every
	// attempt produces an invalid candidate.
	roster := generatedRoster(t, map[string][]string{
		"moderator":  {"【合意確定】【最終合意プラン】強行"},
		"traveler_A": {"まだ決めていません"},
	}, "moderator", "traveler_A")

	bus := NewBus()
	sub, err := bus.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer bus.Unsubscribe(sub)

	out := newController(t, roster, bus, 50, 1).Run(context.Background())

	if out.State != StateFailed {
		t.Fatalf("state = %q, want failed", out.State)
	}
	if out.Attempts != 2 {
		t.Errorf("attempts = %d, want retry bound + 1 = 2", out.Attempts)
	}
	if !errors.Is(out.Err, errors.ErrConsensusNotReached) {
		t.Errorf("err = %v, want ErrConsensusNotReached", out.Err)
	}

	// Exactly one restart notice separates the two attempts; the terminal
	// failure does not emit one.
	var messages, notices int
	for len(sub.Events()) > 0 {
		switch (<-sub.Events()).(type) {
		case MessageEvent:
			messages++
		case SystemNoticeEvent:
			notices++
		}
	}
	if messages != 2 {
		t.Errorf("message events = %d, want 2 (one per attempt)", messages)
	}
	if notices != 1 {
		t.Errorf("restart notices = %d, want 1", notices)
	}
}

func TestControllerBudgetExhaustionConsumesRetry(t *testing.T) {
	roster := generatedRoster(t, map[string][]string{
		"moderator":  {"検討中です"},
		"traveler_A": {"私も検討中です"},
	}, "moderator", "traveler_A")

	bus := NewBus()
	out := newController(t, roster, bus, 4, 0).Run(context.Background())

	if out.State != StateFailed {
		t.Fatalf("state = %q, want failed", out.State)
	}
	if out.Attempts != 1 {
		t.Errorf("attempts = %d, want 1 (retry bound 0)", out.Attempts)
	}
	if bus.Len() != 4 {
		t.Errorf("transcript length = %d, want 4", bus.Len())
	}
}

func TestControllerCollaboratorFailureDoesNotRetry(t *testing.T) {
	failing := completion.NewScripted()
	failing.Err = errors.NewCollaboratorError(errors.CollaboratorUnavailable, "complete", errors.New("503"))

	mod := NewGenerated("moderator", "", "", "m", failing)
	roster, err := NewRoster([]Participant{mod})
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}

	out := newController(t, roster, NewBus(), 50, 5).Run(context.Background())

	if out.State != StateFailed {
		t.Fatalf("state = %q, want failed", out.State)
	}
	if out.Attempts != 1 {
		t.Errorf("attempts = %d, want 1 (failure never consumes retries)", out.Attempts)
	}
	if !errors.IsCollaboratorError(out.Err) {
		t.Errorf("err = %v, want CollaboratorError", out.Err)
	}
}

func TestControllerCancelledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	roster := generatedRoster(t, map[string][]string{
		"moderator": {"turn"},
	}, "moderator")

	out := newController(t, roster, NewBus(), 50, 2).Run(ctx)
	if out.State != StateStopped {
		t.Fatalf("state = %q, want stopped", out.State)
	}
}

func TestControllerFreshAttemptsCarryNoPriorContext(t *testing.T) {
	// Capture the context the moderator sees on each turn. With a retry in
	// between, the second attempt's first turn must see only the task, not
	// utterances from the discarded attempt.
	var contexts [][]completion.Message
	calls := 0
	mod := NewGenerated("moderator", "", "決めてください", "m",
		completion.Func(func(_ context.Context, req completion.Request) (string, error) {
			contexts = append(contexts, req.Messages)
			calls++
			if calls == 1 {
				return "【合意確定】【最終合意プラン】強行", nil // invalid: no affirmation
			}
			return "まだ考え中", nil
		}))
	traveler := NewGenerated("traveler_A", "", "", "m", completion.NewScripted("考え中です"))
	roster, err := NewRoster([]Participant{mod, traveler})
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}

	out := newController(t, roster, NewBus(), 2, 1).Run(context.Background())
	if out.State != StateFailed {
		t.Fatalf("state = %q, want failed", out.State)
	}

	if len(contexts) < 2 {
		t.Fatalf("moderator turns = %d, want at least 2", len(contexts))
	}
	// Second attempt, first turn: task message only.
	second := contexts[1]
	if len(second) != 1 || second[0].Content != "決めてください" {
		t.Errorf("second attempt opening context = %+v, want task only", second)
	}
}
