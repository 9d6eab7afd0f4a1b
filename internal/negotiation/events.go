package negotiation

// Event is the interface implemented by everything a subscriber can
// receive. Convention: EventType returns a short lowercase identifier
// used as the wire-level type tag.
type Event interface {
	EventType() string
}

// Event type identifiers.
const (
	TypeMessage = "message"
	TypeNotice  = "notice"
	TypeTyping  = "typing"
	TypeEnd     = "end"
)

// MessageEvent carries one transcript utterance. Message events are the
// only events with history: a late subscriber replays them from the
// transcript before receiving live ones.
type MessageEvent struct {
	Utterance
}

func (MessageEvent) EventType() string { return TypeMessage }

// SystemNoticeEvent carries an out-of-band engine notice, e.g.
// "negotiation inconclusive, restarting". Delivered to live subscribers
// only; never part of the transcript.
type SystemNoticeEvent struct {
	Text string `json:"text"`
}

func (SystemNoticeEvent) EventType() string { return TypeNotice }

// TypingStatusEvent signals that a participant started or stopped
// composing input. Pure signal; live subscribers only.
type TypingStatusEvent struct {
	Participant string `json:"participant"`
	Active      bool   `json:"active"`
}

func (TypingStatusEvent) EventType() string { return TypeTyping }

// EndEvent is the terminal marker; the last event every subscriber sees.
type EndEvent struct{}

func (EndEvent) EventType() string { return TypeEnd }
