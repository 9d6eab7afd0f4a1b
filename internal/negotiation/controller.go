package negotiation

import (
	"context"

	"github.com/parleyhq/parley/internal/errors"
	"github.com/parleyhq/parley/internal/logging"
)

// DefaultRetryBound is the number of restarts granted after the first
// attempt, so a session runs at most DefaultRetryBound+1 attempts.
const DefaultRetryBound = 2

// restartNotice is broadcast to live subscribers when an inconclusive
// attempt is discarded.
const restartNotice = "negotiation inconclusive, restarting"

// Outcome is the terminal result of a controller run.
type Outcome struct {
	State SessionState

	// Attempts is the number of attempts actually executed.
	Attempts int

	// Validation is the last attempt's validation result; meaningful for
	// Completed and for Failed-after-exhaustion.
	Validation Result

	// Err is set when the run failed on a collaborator error.
	Err error
}

// RetryController wraps the scheduler with attempt-level retry: an
// invalid candidate or an exhausted budget discards the segment,
// broadcasts a restart notice, and begins a fresh attempt, up to the
// retry bound. Collaborator failures and cancellation never consume a
// retry; they end the session immediately.
type RetryController struct {
	scheduler  *TurnScheduler
	validator  *Validator
	roster     *Roster
	bus        *Bus
	retryBound int
	logger     *logging.Logger
}

// NewRetryController creates a controller. A negative bound falls back to
// the default; zero is honored (single attempt, no retries).
func NewRetryController(scheduler *TurnScheduler, validator *Validator, roster *Roster, bus *Bus, retryBound int, logger *logging.Logger) *RetryController {
	if retryBound < 0 {
		retryBound = DefaultRetryBound
	}
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &RetryController{
		scheduler:  scheduler,
		validator:  validator,
		roster:     roster,
		bus:        bus,
		retryBound: retryBound,
		logger:     logger,
	}
}

// Run drives attempts until one terminates the session. Completed is
// reachable only through a validated segment; every other path ends in
// Stopped or Failed.
func (c *RetryController) Run(ctx context.Context) Outcome {
	for attempt := 1; ; attempt++ {
		c.logger.Info("attempt started", "attempt", attempt)

		res := c.scheduler.Run(ctx)

		switch res.Reason {
		case ReasonCancelled:
			c.logger.Info("attempt cancelled", "attempt", attempt)
			return Outcome{State: StateStopped, Attempts: attempt}

		case ReasonCollaboratorFailure:
			c.logger.Error("attempt aborted", "attempt", attempt, "error", res.Err)
			return Outcome{State: StateFailed, Attempts: attempt, Err: res.Err}

		case ReasonCandidate:
			v := c.validator.Validate(res.Segment, c.roster)
			if v.Valid {
				c.logger.Info("agreement validated",
					"attempt", attempt, "candidate", v.CandidateIndex)
				return Outcome{State: StateCompleted, Attempts: attempt, Validation: v}
			}
			c.logger.Warn("candidate rejected",
				"attempt", attempt, "unaffirmed", v.Unaffirmed)
			if attempt > c.retryBound {
				return Outcome{
					State:      StateFailed,
					Attempts:   attempt,
					Validation: v,
					Err:        errors.ErrConsensusNotReached,
				}
			}

		case ReasonBudgetExceeded:
			c.logger.Warn("message budget exhausted", "attempt", attempt)
			if attempt > c.retryBound {
				return Outcome{
					State:      StateFailed,
					Attempts:   attempt,
					Validation: Result{Valid: false, CandidateIndex: -1},
					Err:        errors.ErrConsensusNotReached,
				}
			}
		}

		c.bus.Signal(SystemNoticeEvent{Text: restartNotice})
	}
}
