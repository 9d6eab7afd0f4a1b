package completion

import (
	"context"
	"sync"
)

// Func adapts a function to the Client interface.
type Func func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Scripted is a Client that replays a fixed sequence of lines, for tests
// and offline dry runs. Once the script is exhausted it keeps returning
// the last line, so a scripted negotiation can run until its message
// budget without special casing.
type Scripted struct {
	mu    sync.Mutex
	lines []string
	next  int

	// Err, when set, is returned instead of a line once the script reaches
	// the position given by ErrAt (0-based call count).
	Err   error
	ErrAt int
}

// NewScripted creates a Scripted client replaying lines in order.
func NewScripted(lines ...string) *Scripted {
	return &Scripted{lines: lines}
}

// Complete returns the next scripted line.
func (s *Scripted) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil && s.next >= s.ErrAt {
		return "", s.Err
	}
	if len(s.lines) == 0 {
		return "", nil
	}

	i := s.next
	if i >= len(s.lines) {
		i = len(s.lines) - 1
	}
	s.next++
	return s.lines[i], nil
}

// Calls returns how many completions have been served.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
