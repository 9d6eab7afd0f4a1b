package negotiation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/errors"
)

func TestTurnChannelFIFOAndBacklog(t *testing.T) {
	tc := NewTurnChannel(2)

	if err := tc.Feed("one"); err != nil {
		t.Fatalf("Feed one: %v", err)
	}
	if err := tc.Feed("two"); err != nil {
		t.Fatalf("Feed two: %v", err)
	}
	if err := tc.Feed("three"); !errors.Is(err, errors.ErrInputBacklog) {
		t.Fatalf("Feed over depth = %v, want ErrInputBacklog", err)
	}
	if n := tc.Pending(); n != 2 {
		t.Errorf("Pending = %d, want 2", n)
	}

	for _, want := range []string{"one", "two"} {
		got, err := tc.Recv(context.Background())
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if got != want {
			t.Errorf("Recv = %q, want %q", got, want)
		}
	}
}

func TestTurnChannelRecvCancelled(t *testing.T) {
	tc := NewTurnChannel(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := tc.Recv(ctx)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, errors.ErrCancelled) {
			t.Errorf("Recv after cancel = %v, want ErrCancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not unblock on cancellation")
	}
}

func TestManualNextTurnWaitsForFeed(t *testing.T) {
	m := NewManual("traveler_B", 4)

	if m.Role() != RoleManual {
		t.Errorf("Role = %q, want manual", m.Role())
	}

	if err := m.Input().Feed("了承します"); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	got, err := m.NextTurn(context.Background(), nil)
	if err != nil {
		t.Fatalf("NextTurn: %v", err)
	}
	if got != "了承します" {
		t.Errorf("NextTurn = %q", got)
	}
}

func TestGeneratedRendersSegmentAsContext(t *testing.T) {
	var captured completion.Request
	client := completion.Func(func(_ context.Context, req completion.Request) (string, error) {
		captured = req
		return "next line", nil
	})

	g := NewGenerated("traveler_A", "you are traveler A", "plan a trip", "test-model", client)

	segment := []Utterance{
		{Speaker: "moderator", Text: "opening", Sequence: 0},
		{Speaker: "traveler_A", Text: "my idea", Sequence: 1},
		{Speaker: "traveler_B", Text: "another idea", Sequence: 2},
	}

	got, err := g.NextTurn(context.Background(), segment)
	if err != nil {
		t.Fatalf("NextTurn: %v", err)
	}
	if got != "next line" {
		t.Errorf("NextTurn = %q", got)
	}

	if captured.Model != "test-model" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.System != "you are traveler A" {
		t.Errorf("system = %q", captured.System)
	}
	if len(captured.Messages) != 4 {
		t.Fatalf("message count = %d, want 4 (task + 3 turns)", len(captured.Messages))
	}
	if captured.Messages[0].Role != "user" || captured.Messages[0].Content != "plan a trip" {
		t.Errorf("task message = %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" || !strings.HasPrefix(captured.Messages[1].Content, "[moderator]") {
		t.Errorf("foreign turn = %+v", captured.Messages[1])
	}
	if captured.Messages[2].Role != "assistant" || captured.Messages[2].Content != "my idea" {
		t.Errorf("own turn = %+v", captured.Messages[2])
	}
}

func TestGeneratedPropagatesCollaboratorError(t *testing.T) {
	want := errors.NewCollaboratorError(errors.CollaboratorUnavailable, "complete", errors.New("boom"))
	client := completion.Func(func(context.Context, completion.Request) (string, error) {
		return "", want
	})

	g := NewGenerated("traveler_C", "", "", "m", client)
	_, err := g.NextTurn(context.Background(), nil)
	if err == nil {
		t.Fatal("NextTurn succeeded, want error")
	}
	if !errors.IsCollaboratorError(err) {
		t.Errorf("error %v does not unwrap to CollaboratorError", err)
	}
}
