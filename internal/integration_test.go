// Package internal contains integration tests that verify the packages
// work together correctly: the session engine, the registry, and the
// subscriber event flow a frontend would observe.
package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/negotiation"
	"github.com/parleyhq/parley/internal/wishes"
)

// TestNegotiationEndToEnd drives a full roster built from the default
// wish set through a scripted negotiation and checks what an observer
// sees: replayed transcript, typing signals, and the terminal end marker.
func TestNegotiationEndToEnd(t *testing.T) {
	set := wishes.ParseText(wishes.DefaultText)
	specs := wishes.RosterSpecs(set, wishes.TravelerRoles,
		"【合意確定】", "【最終合意プラン】", []string{"賛成", "同意", "了承"},
		"test-model", "test-model")

	// Turns are served round-robin, so one shared script is deterministic:
	// moderator, A, B, C, D, moderator.
	client := completion.NewScripted(
		"それでは条件を順に伺います",
		"自然の多い場所なら賛成です",
		"温泉付きの宿であれば同意します",
		"皆と一緒に行けるなら了承です",
		"歴史的な街並みが入るなら賛成です",
		"【合意確定】\n【最終合意プラン】温泉と歴史の街を巡る2泊3日",
	)

	roster, err := negotiation.BuildRoster(specs, wishes.TaskPrompt(), "test-model", client, 4)
	if err != nil {
		t.Fatalf("BuildRoster: %v", err)
	}

	registry := negotiation.NewRegistry()
	sess := negotiation.NewSession("e2e", roster, negotiation.Config{RetryBound: 0}, nil)
	if err := registry.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	sub, err := sess.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		sess.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
	}

	if got := sess.State(); got != negotiation.StateCompleted {
		t.Fatalf("state = %q, want completed", got)
	}

	var messages, typings int
	sawEnd := false
	for ev := range sub.Events() {
		switch ev.(type) {
		case negotiation.MessageEvent:
			messages++
		case negotiation.TypingStatusEvent:
			typings++
		case negotiation.EndEvent:
			sawEnd = true
		}
	}
	if messages != 6 {
		t.Errorf("observed %d messages, want 6", messages)
	}
	if typings != 12 {
		t.Errorf("observed %d typing signals, want 12 (on/off per generated turn)", typings)
	}
	if !sawEnd {
		t.Error("observer never received the end marker")
	}

	// The transcript stays available through the registry after the run.
	got, err := registry.Get("e2e")
	if err != nil {
		t.Fatalf("Get after completion: %v", err)
	}
	md := got.LogMarkdown()
	if !strings.Contains(md, "【最終合意プラン】") {
		t.Errorf("log missing the agreed plan:\n%s", md)
	}
}
