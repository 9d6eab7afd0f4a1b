package negotiation

import (
	"context"

	"github.com/parleyhq/parley/internal/errors"
	"github.com/parleyhq/parley/internal/logging"
)

// DefaultMessageBudget caps the utterances of one attempt.
const DefaultMessageBudget = 50

// AttemptResult describes how one scheduler attempt ended.
type AttemptResult struct {
	Reason StopReason

	// Segment holds the attempt's utterances in order. The candidate check
	// and validation both run over this slice, never over prior attempts.
	Segment []Utterance

	// Err is set for ReasonCollaboratorFailure.
	Err error
}

// TurnScheduler runs a single negotiation attempt: strict round-robin
// turns starting from the coordinator, each utterance appended to the bus
// before the next turn begins. The scheduler detects candidate
// declarations but does not judge them; validity is the controller's call.
type TurnScheduler struct {
	roster    *Roster
	bus       *Bus
	validator *Validator
	budget    int
	logger    *logging.Logger
}

// NewTurnScheduler creates a scheduler. A budget below one falls back to
// the default.
func NewTurnScheduler(roster *Roster, bus *Bus, validator *Validator, budget int, logger *logging.Logger) *TurnScheduler {
	if budget < 1 {
		budget = DefaultMessageBudget
	}
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &TurnScheduler{
		roster:    roster,
		bus:       bus,
		validator: validator,
		budget:    budget,
		logger:    logger,
	}
}

// Run executes one attempt until a candidate appears, the message budget
// is exhausted, a generated turn fails, or ctx is cancelled. The turn
// order is determined entirely by the roster: coordinator first, then the
// remaining members in roster order, wrapping around.
func (s *TurnScheduler) Run(ctx context.Context) AttemptResult {
	segment := make([]Utterance, 0, s.budget)
	coordinatorID := s.roster.Coordinator().ID()

	for i := 0; ; i++ {
		p := s.roster.At(i % s.roster.Len())

		if ctx.Err() != nil {
			return AttemptResult{Reason: ReasonCancelled, Segment: segment}
		}

		if p.Role() == RoleGenerated {
			s.bus.Signal(TypingStatusEvent{Participant: p.ID(), Active: true})
		}
		text, err := p.NextTurn(ctx, segment)
		if p.Role() == RoleGenerated {
			s.bus.Signal(TypingStatusEvent{Participant: p.ID(), Active: false})
		}
		if err != nil {
			if errors.Is(err, errors.ErrCancelled) || ctx.Err() != nil {
				return AttemptResult{Reason: ReasonCancelled, Segment: segment}
			}
			s.logger.Error("turn failed", "participant", p.ID(), "error", err)
			return AttemptResult{Reason: ReasonCollaboratorFailure, Segment: segment, Err: err}
		}

		u := s.bus.Append(p.ID(), text)
		segment = append(segment, u)
		s.logger.Debug("utterance appended", "participant", p.ID(), "sequence", u.Sequence)

		// Candidate check runs before the budget check so an agreement
		// declared on the last budgeted message still counts.
		if p.ID() == coordinatorID {
			if s.validator.CandidateIndex(segment, coordinatorID) >= 0 {
				return AttemptResult{Reason: ReasonCandidate, Segment: segment}
			}
		}

		if len(segment) >= s.budget {
			return AttemptResult{Reason: ReasonBudgetExceeded, Segment: segment}
		}
	}
}
