package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parleyhq/parley/internal/negotiation"
)

// endFrame closes every stream; frontends treat it as EOF.
const endFrame = "__END__"

const heartbeatInterval = 15 * time.Second

// handleStream serves the session's event stream over SSE. A new
// subscriber first replays the transcript, then follows live events until
// the session ends or the client disconnects. Streams on an already
// finished session replay the history and close immediately.
func (s *Server) handleStream(c *gin.Context) {
	sess, ok := s.sessionFromQuery(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sub, err := sess.Subscribe()
	if err != nil {
		// The session already closed its bus: replay what happened and end.
		for _, u := range sess.History() {
			writeSSE(c.Writer, messagePayload(u))
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", endFrame)
		c.Writer.Flush()
		return
	}
	defer sess.Unsubscribe(sub)

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			if _, isEnd := ev.(negotiation.EndEvent); isEnd {
				fmt.Fprintf(c.Writer, "data: %s\n\n", endFrame)
				c.Writer.Flush()
				return
			}
			if payload, ok := eventPayload(ev); ok {
				writeSSE(c.Writer, payload)
				c.Writer.Flush()
			}
		}
	}
}

// messagePayload is the wire form of one transcript utterance.
func messagePayload(u negotiation.Utterance) map[string]any {
	return map[string]any{
		"type":     negotiation.TypeMessage,
		"who":      u.Speaker,
		"content":  u.Text,
		"sequence": u.Sequence,
	}
}

// eventPayload converts a bus event to its wire form. EndEvent is handled
// by the stream loop, not here.
func eventPayload(ev negotiation.Event) (map[string]any, bool) {
	switch e := ev.(type) {
	case negotiation.MessageEvent:
		return messagePayload(e.Utterance), true
	case negotiation.SystemNoticeEvent:
		return map[string]any{
			"type":    negotiation.TypeNotice,
			"who":     "system",
			"content": e.Text,
		}, true
	case negotiation.TypingStatusEvent:
		return map[string]any{
			"type":   negotiation.TypeTyping,
			"who":    e.Participant,
			"active": e.Active,
		}, true
	default:
		return nil, false
	}
}

// writeSSE emits one data-only SSE frame.
func writeSSE(w io.Writer, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
