// Package negotiation implements the session orchestration and
// consensus-validation engine for multi-party, turn-structured dialogue.
//
// A Session drives a fixed roster of participants (some backed by the
// completion collaborator, some by live human input) through strict
// round-robin turns until the coordinator declares a validated agreement,
// the message budget runs out, or the session is stopped. Every utterance
// flows through the session's Bus, which keeps the durable transcript and
// fans events out to subscribers with replay-then-live semantics.
//
// # Main Types
//
//   - [Bus]: per-session broadcaster holding the transcript and live subscribers
//   - [Participant]: one turn-taker, either [Generated] or [Manual]
//   - [Validator]: decides whether an attempt segment is a genuine agreement
//   - [TurnScheduler]: runs one attempt of round-robin turns
//   - [RetryController]: restarts invalid attempts up to the retry bound
//   - [Session]: one negotiation's full lifecycle
//   - [Registry]: process-wide table of active sessions
//
// # Concurrency
//
// Each Session runs one background goroutine; only that goroutine appends
// to the Bus, so utterances carry strictly increasing sequence numbers in
// turn order. Boundary operations (Feed, SetTyping, Subscribe, Stop) are
// safe to call concurrently with the running task. Sessions share nothing
// but the Registry map, which is mutex-guarded.
package negotiation
