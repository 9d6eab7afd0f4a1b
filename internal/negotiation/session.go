package negotiation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/errors"
	"github.com/parleyhq/parley/internal/logging"
)

// Config carries the tunables of one session. Zero values fall back to
// the package defaults.
type Config struct {
	MessageBudget   int
	RetryBound      int
	InputQueueDepth int
	Validator       *Validator
}

func (c Config) withDefaults() Config {
	if c.MessageBudget < 1 {
		c.MessageBudget = DefaultMessageBudget
	}
	if c.RetryBound < 0 {
		c.RetryBound = DefaultRetryBound
	}
	if c.InputQueueDepth < 1 {
		c.InputQueueDepth = defaultInputDepth
	}
	if c.Validator == nil {
		c.Validator = NewValidator()
	}
	return c
}

// Session is one negotiation's full lifecycle: a fixed roster, a bus, and
// a single background run task. Boundary operations are safe to call
// concurrently with the running task and with each other.
type Session struct {
	id     string
	roster *Roster
	bus    *Bus
	cfg    Config
	logger *logging.Logger

	mu       sync.Mutex
	state    SessionState
	attempts int
	outcome  Outcome
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSession creates a session in the Created state. The roster is fixed
// for the session's lifetime.
func NewSession(id string, roster *Roster, cfg Config, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Session{
		id:     id,
		roster: roster,
		bus:    NewBus(),
		cfg:    cfg.withDefaults(),
		logger: logger.WithSession(id),
		state:  StateCreated,
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Roster returns the session's fixed participant set.
func (s *Session) Roster() *Roster { return s.roster }

// Start launches the background run task. Starting a session that already
// left the Created state is an error.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCreated {
		return errors.ErrSessionClosed
	}
	s.state = StateRunning

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.run(ctx)
	return nil
}

// run executes the retry loop to a terminal state. A panic in any turn is
// recovered here: the session fails cleanly and the process survives.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.bus.Close()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("run task panicked", "panic", fmt.Sprint(r))
			s.bus.Signal(SystemNoticeEvent{Text: "internal error, session aborted"})
			s.finish(Outcome{State: StateFailed, Err: fmt.Errorf("run panicked: %v", r)})
		}
	}()

	scheduler := NewTurnScheduler(s.roster, s.bus, s.cfg.Validator, s.cfg.MessageBudget, s.logger)
	controller := NewRetryController(scheduler, s.cfg.Validator, s.roster, s.bus, s.cfg.RetryBound, s.logger)

	out := controller.Run(ctx)
	s.finish(out)
	s.logger.Info("session finished",
		"state", string(out.State), "attempts", out.Attempts)
}

// finish records the terminal outcome. A session already stopped by the
// boundary keeps the Stopped state.
func (s *Session) finish(out Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts = out.Attempts
	if s.state.Terminal() {
		return
	}
	s.state = out.State
	s.outcome = out
}

// Stop cancels the run task, unblocks pending manual turns, waits for the
// task to wind down, and closes the bus. Idempotent: stopping a finished
// or already-stopped session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	started := s.state == StateRunning
	s.state = StateStopped
	cancel := s.cancel
	s.mu.Unlock()

	if started {
		cancel()
		<-s.done
		return
	}
	// Never started: no run task owns the bus, close it here.
	s.bus.Close()
	close(s.done)
}

// Feed delivers operator input to a manual participant. The input is
// buffered until the participant's turn comes around; a full buffer is
// rejected rather than blocking the caller.
func (s *Session) Feed(participantID, text string) error {
	s.mu.Lock()
	closed := s.state.Terminal()
	s.mu.Unlock()
	if closed {
		return errors.ErrSessionClosed
	}

	p, ok := s.roster.ByID(participantID)
	if !ok {
		return errors.ErrNoSuchParticipant
	}
	m, ok := p.(*Manual)
	if !ok {
		return errors.ErrNotManualParticipant
	}
	return m.Input().Feed(text)
}

// SetTyping broadcasts a typing indicator for a participant to live
// subscribers.
func (s *Session) SetTyping(participantID string, active bool) error {
	if _, ok := s.roster.ByID(participantID); !ok {
		return errors.ErrNoSuchParticipant
	}
	s.bus.Signal(TypingStatusEvent{Participant: participantID, Active: active})
	return nil
}

// Subscribe attaches a listener to the session's bus.
func (s *Session) Subscribe() (*Subscriber, error) {
	return s.bus.Subscribe()
}

// Unsubscribe releases a listener.
func (s *Session) Unsubscribe(sub *Subscriber) {
	s.bus.Unsubscribe(sub)
}

// History returns a copy of the full transcript, including utterances of
// discarded attempts.
func (s *Session) History() []Utterance {
	return s.bus.History()
}

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts returns the number of attempts executed so far.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Outcome returns the terminal outcome; meaningful once State is terminal.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Wait blocks until the run task finishes.
func (s *Session) Wait() {
	<-s.done
}

// LogMarkdown renders the transcript as a markdown document.
func (s *Session) LogMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session %s\n\n", s.id)
	for _, u := range s.bus.History() {
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", u.Speaker, u.Text)
	}
	return b.String()
}

// BuildRoster turns participant specs into a roster: generated specs are
// wired to the completion client with the session task as shared context,
// manual specs get a bounded input channel. Model falls back to
// defaultModel when a spec leaves it empty.
func BuildRoster(specs []ParticipantSpec, task, defaultModel string, client completion.Client, inputDepth int) (*Roster, error) {
	participants := make([]Participant, 0, len(specs))
	for _, spec := range specs {
		switch spec.Role {
		case RoleManual:
			participants = append(participants, NewManual(spec.ID, inputDepth))
		case RoleGenerated:
			model := spec.Model
			if model == "" {
				model = defaultModel
			}
			participants = append(participants, NewGenerated(spec.ID, spec.Instruction, task, model, client))
		default:
			return nil, fmt.Errorf("participant %q: unknown role %q: %w",
				spec.ID, spec.Role, errors.ErrInvalidRoster)
		}
	}
	return NewRoster(participants)
}
