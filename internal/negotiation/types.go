package negotiation

import (
	"github.com/parleyhq/parley/internal/errors"
)

// Role distinguishes how a participant produces its turns.
type Role string

const (
	// RoleGenerated marks a participant driven by the completion collaborator.
	RoleGenerated Role = "generated"

	// RoleManual marks a participant driven by a live human operator.
	RoleManual Role = "manual"
)

// Utterance is one message of a negotiation transcript. Immutable once
// appended; Sequence is assigned by the Bus at append time and is strictly
// increasing within a session.
type Utterance struct {
	Speaker  string `json:"speaker"`
	Text     string `json:"text"`
	Sequence int    `json:"sequence"`
}

// ParticipantSpec describes one roster entry for session creation.
type ParticipantSpec struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	Instruction string `json:"instruction,omitempty"` // role instruction for generated participants
	Model       string `json:"model,omitempty"`       // completion model override
}

// SessionState is the lifecycle state of a session.
type SessionState string

const (
	StateCreated   SessionState = "created"
	StateRunning   SessionState = "running"
	StateCompleted SessionState = "completed"
	StateStopped   SessionState = "stopped"
	StateFailed    SessionState = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s SessionState) Terminal() bool {
	switch s {
	case StateCompleted, StateStopped, StateFailed:
		return true
	}
	return false
}

// StopReason explains why a scheduler attempt terminated.
type StopReason string

const (
	// ReasonCandidate means the coordinator produced a candidate agreement;
	// validity is decided by the RetryController, not the scheduler.
	ReasonCandidate StopReason = "candidate"

	// ReasonBudgetExceeded means the attempt hit its message budget.
	ReasonBudgetExceeded StopReason = "budget_exceeded"

	// ReasonCollaboratorFailure means a generated turn failed; fatal to the
	// attempt, surfaced to the controller for session-level handling.
	ReasonCollaboratorFailure StopReason = "collaborator_failure"

	// ReasonCancelled means the attempt was abandoned by an explicit stop.
	ReasonCancelled StopReason = "cancelled"
)

// Roster is the fixed, ordered participant set of one session. The slice
// position is the turn order; index 0 is the coordinator. The roster
// cannot change for the session's lifetime.
type Roster struct {
	participants []Participant
	byID         map[string]Participant
}

// NewRoster validates and builds a roster. It fails with ErrInvalidRoster
// when the set is empty or an id appears twice.
func NewRoster(participants []Participant) (*Roster, error) {
	if len(participants) == 0 {
		return nil, errors.ErrInvalidRoster
	}

	byID := make(map[string]Participant, len(participants))
	for _, p := range participants {
		if p.ID() == "" {
			return nil, errors.ErrInvalidRoster
		}
		if _, dup := byID[p.ID()]; dup {
			return nil, errors.ErrInvalidRoster
		}
		byID[p.ID()] = p
	}

	return &Roster{participants: participants, byID: byID}, nil
}

// Len returns the roster size.
func (r *Roster) Len() int { return len(r.participants) }

// At returns the participant at the given turn-order index.
func (r *Roster) At(i int) Participant { return r.participants[i] }

// Coordinator returns the distinguished first participant, responsible for
// turn narration and for declaring agreement.
func (r *Roster) Coordinator() Participant { return r.participants[0] }

// ByID looks up a participant by id.
func (r *Roster) ByID(id string) (Participant, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Others returns every participant except the coordinator, in turn order.
func (r *Roster) Others() []Participant {
	return r.participants[1:]
}

// IDs returns all participant ids in turn order.
func (r *Roster) IDs() []string {
	ids := make([]string, len(r.participants))
	for i, p := range r.participants {
		ids[i] = p.ID()
	}
	return ids
}
