// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import "testing"

// TestStartWhileActive is boundary scenario 6: two Start calls back to
// back. The second must be rejected, the first session's listener
// registration must be untouched, and the listener count on the
// Instrumentation collaborator must have incremented by exactly 1, not
// 2.
func TestStartWhileActive(t *testing.T) {
	rt := newFakeRuntime()
	instr := &fakeInstrumentation{}
	sink := &fakeChunkedSink{}

	if err := Start("", -1, 4096, 0, true, sink, rt, instr); err != nil {
		t.Fatalf("first Start failed: %s\n", err)
	}
	if !IsActive() {
		t.Fatalf("IsActive() = false after first Start\n")
	}
	first := theTrace

	if err := Start("", -1, 4096, 0, true, sink, rt, instr); err != nil {
		t.Fatalf("second Start returned an error instead of logging and no-op: %s\n", err)
	}
	if theTrace != first {
		t.Errorf("second Start replaced the active session\n")
	}
	if got := instr.listenerCount(); got != 1 {
		t.Errorf("listener count = %d, want 1\n", got)
	}

	if err := Stop(rt, instr); err != nil {
		t.Fatalf("Stop failed: %s\n", err)
	}
	if IsActive() {
		t.Errorf("IsActive() = true after Stop\n")
	}
	if got := instr.listenerCount(); got != 0 {
		t.Errorf("listener count after Stop = %d, want 0\n", got)
	}
}

func TestStopWithNoActiveSession(t *testing.T) {
	rt := newFakeRuntime()
	instr := &fakeInstrumentation{}

	if IsActive() {
		t.Fatalf("a previous test left a session active\n")
	}
	if err := Stop(rt, instr); err != nil {
		t.Errorf("Stop with no active session returned %s, want nil (logged and ignored)\n", err)
	}
}

func TestStartStopRoundTripEmptySession(t *testing.T) {
	rt := newFakeRuntime()
	instr := &fakeInstrumentation{}
	sink := &fakeChunkedSink{}

	if err := Start("", -1, 4096, 0, true, sink, rt, instr); err != nil {
		t.Fatalf("Start failed: %s\n", err)
	}
	if err := Stop(rt, instr); err != nil {
		t.Fatalf("Stop failed: %s\n", err)
	}

	if len(sink.chunks) != 1 {
		t.Fatalf("got %d chunks, want 1\n", len(sink.chunks))
	}
	parts := sink.chunks[0]
	if len(parts) != 2 {
		t.Fatalf("got %d parts in chunk, want 2 (preamble, buffer)\n", len(parts))
	}
	preamble := string(parts[0])
	if !contains(preamble, "num-method-calls=0") {
		t.Errorf("preamble missing num-method-calls=0:\n%s\n", preamble)
	}
	if !contains(preamble, "data-file-overflow=false") {
		t.Errorf("preamble missing data-file-overflow=false:\n%s\n", preamble)
	}

	if rt.suspendCalls != rt.resumeCalls {
		t.Errorf("suspendCalls=%d resumeCalls=%d, want equal\n", rt.suspendCalls, rt.resumeCalls)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
