package negotiation

import (
	"sync"

	"github.com/parleyhq/parley/internal/errors"
)

// defaultQueueDepth is the buffer size of a subscriber queue. A subscriber
// that falls further behind than this loses its oldest undelivered events
// rather than stalling the negotiation.
const defaultQueueDepth = 256

// replayHeadroom is extra queue capacity granted on subscribe beyond the
// transcript snapshot, so the replay itself can never overflow.
const replayHeadroom = 64

// Subscriber is one listener's queue of events. Obtained from
// Bus.Subscribe and released with Bus.Unsubscribe; the channel returned
// by Events is closed when the subscriber is released or the bus closes.
type Subscriber struct {
	ch chan Event
}

// Events returns the receive side of the subscriber's queue. Events
// arrive in transcript order; the final event is always EndEvent unless
// the subscriber unsubscribes first.
func (s *Subscriber) Events() <-chan Event { return s.ch }

// push enqueues without blocking, dropping the oldest queued event on
// overflow. Always called with the bus lock held, so competing drops
// cannot interleave.
func (s *Subscriber) push(ev Event) {
	for {
		select {
		case s.ch <- ev:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Bus is a per-session broadcaster. It owns the durable transcript,
// assigns sequence numbers, and fans events out to live subscribers.
// Only the session's own background task appends; boundary callers
// subscribe, signal and read history concurrently.
type Bus struct {
	mu         sync.Mutex
	transcript []Utterance
	subs       map[*Subscriber]struct{}
	closed     bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscriber]struct{})}
}

// Append stores an utterance in the transcript with the next sequence
// number and delivers it to every live subscriber. It never blocks on a
// slow consumer and always succeeds.
func (b *Bus) Append(speaker, text string) Utterance {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := Utterance{Speaker: speaker, Text: text, Sequence: len(b.transcript)}
	b.transcript = append(b.transcript, u)

	for sub := range b.subs {
		sub.push(MessageEvent{u})
	}
	return u
}

// Subscribe registers a new listener. The subscriber's first events
// replay the transcript snapshot taken under the bus lock, then continue
// with live appends, so a late joiner never misses or duplicates an
// utterance that existed at subscribe time. Fails once the bus is closed.
func (b *Bus) Subscribe() (*Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errors.ErrSessionClosed
	}

	depth := defaultQueueDepth
	if n := len(b.transcript) + replayHeadroom; n > depth {
		depth = n
	}
	sub := &Subscriber{ch: make(chan Event, depth)}

	for _, u := range b.transcript {
		sub.ch <- MessageEvent{u}
	}
	b.subs[sub] = struct{}{}
	return sub, nil
}

// Unsubscribe removes a listener and closes its queue. Unknown or
// already-removed subscribers are ignored.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Signal delivers an out-of-band event (notice, typing status) to live
// subscribers only. Signals are not replayed and leave the transcript
// untouched. Signalling a closed bus is a no-op.
func (b *Bus) Signal(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for sub := range b.subs {
		sub.push(ev)
	}
}

// Close delivers the terminal EndEvent to every subscriber, closes their
// queues, and rejects further subscriptions. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for sub := range b.subs {
		sub.push(EndEvent{})
		close(sub.ch)
		delete(b.subs, sub)
	}
}

// History returns a copy of the full transcript.
func (b *Bus) History() []Utterance {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Utterance, len(b.transcript))
	copy(out, b.transcript)
	return out
}

// Len returns the transcript length.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.transcript)
}

// SubscriberCount returns the number of live subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
