package negotiation

import (
	"context"
	"fmt"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/errors"
)

// defaultInputDepth bounds a manual participant's buffered input when no
// depth is configured.
const defaultInputDepth = 8

// Participant produces the next utterance when it is its turn. The
// segment holds the current attempt's utterances only; a fresh attempt
// starts participants with an empty conversational context. Participants
// never append to the bus themselves; that is the scheduler's job.
type Participant interface {
	ID() string
	Role() Role
	NextTurn(ctx context.Context, segment []Utterance) (string, error)
}

// TurnChannel is the bounded hand-off between an external operator and a
// manual participant. Out-of-turn input is buffered FIFO up to the
// configured depth; a full queue rejects the feed with ErrInputBacklog.
type TurnChannel struct {
	ch chan string
}

// NewTurnChannel creates a channel with the given buffer depth; depth
// values below one fall back to the default.
func NewTurnChannel(depth int) *TurnChannel {
	if depth < 1 {
		depth = defaultInputDepth
	}
	return &TurnChannel{ch: make(chan string, depth)}
}

// Feed enqueues operator input without blocking.
func (t *TurnChannel) Feed(text string) error {
	select {
	case t.ch <- text:
		return nil
	default:
		return errors.ErrInputBacklog
	}
}

// Recv blocks until input arrives or ctx is cancelled. Cancellation
// returns ErrCancelled so a stopped session unblocks pending turns with a
// definite outcome.
func (t *TurnChannel) Recv(ctx context.Context) (string, error) {
	select {
	case text := <-t.ch:
		return text, nil
	case <-ctx.Done():
		return "", errors.ErrCancelled
	}
}

// Pending returns the number of buffered inputs.
func (t *TurnChannel) Pending() int { return len(t.ch) }

// Manual is a participant driven by a live human operator. It blocks on
// its TurnChannel with no per-turn timeout; the attempt-level message
// budget still bounds total session length.
type Manual struct {
	id    string
	input *TurnChannel
}

// NewManual creates a human-driven participant with the given input depth.
func NewManual(id string, inputDepth int) *Manual {
	return &Manual{id: id, input: NewTurnChannel(inputDepth)}
}

func (m *Manual) ID() string { return m.id }

func (m *Manual) Role() Role { return RoleManual }

// Input exposes the participant's turn channel for boundary feeding.
func (m *Manual) Input() *TurnChannel { return m.input }

// NextTurn waits for operator input.
func (m *Manual) NextTurn(ctx context.Context, _ []Utterance) (string, error) {
	return m.input.Recv(ctx)
}

// Generated is a participant driven by the completion collaborator. Its
// conversational context is the role instruction, the session task, and
// the current attempt's segment, never anything from discarded attempts.
type Generated struct {
	id          string
	instruction string
	task        string
	model       string
	client      completion.Client
}

// NewGenerated creates a collaborator-driven participant.
func NewGenerated(id, instruction, task, model string, client completion.Client) *Generated {
	return &Generated{
		id:          id,
		instruction: instruction,
		task:        task,
		model:       model,
		client:      client,
	}
}

func (g *Generated) ID() string { return g.id }

func (g *Generated) Role() Role { return RoleGenerated }

// NextTurn asks the collaborator for this participant's next utterance.
// Collaborator failures propagate as errors, never as silent empty text.
func (g *Generated) NextTurn(ctx context.Context, segment []Utterance) (string, error) {
	text, err := g.client.Complete(ctx, completion.Request{
		Model:    g.model,
		System:   g.instruction,
		Messages: g.renderContext(segment),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.ErrCancelled
		}
		return "", fmt.Errorf("turn for %s: %w", g.id, err)
	}
	return text, nil
}

// renderContext converts the attempt segment into chat messages: the
// participant's own utterances as assistant turns, everyone else's as
// attributed user turns, preceded by the session task.
func (g *Generated) renderContext(segment []Utterance) []completion.Message {
	msgs := make([]completion.Message, 0, len(segment)+1)
	if g.task != "" {
		msgs = append(msgs, completion.Message{Role: "user", Content: g.task})
	}
	for _, u := range segment {
		if u.Speaker == g.id {
			msgs = append(msgs, completion.Message{Role: "assistant", Content: u.Text})
		} else {
			msgs = append(msgs, completion.Message{
				Role:    "user",
				Content: fmt.Sprintf("[%s] %s", u.Speaker, u.Text),
			})
		}
	}
	return msgs
}
