package main

import (
	"strings"
	"testing"
)

type recordingWaiter struct {
	calls *[]string
}

func (w recordingWaiter) Wait() { *w.calls = append(*w.calls, "wait") }

func TestDrainEventsWaitsBeforeReleasing(t *testing.T) {
	var calls []string
	drainEvents(recordingWaiter{calls: &calls},
		func() { calls = append(calls, "close scheduler") },
		nil,
	)

	got := strings.Join(calls, ", ")
	if got != "wait, close scheduler" {
		t.Fatalf("calls = %s, want handlers drained before the scheduler closes", got)
	}
}
