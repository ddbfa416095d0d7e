// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import (
	"sync"
)

// theTrace is the process-wide singleton slot (spec §3: "a session
// exists iff the_trace singleton slot is non-empty"), guarded by
// traceLock exactly as callentry_lst.go's CallEntryHash guards its own
// resources at Init/Destroy.
var (
	traceLock sync.Mutex
	theTrace  *Tracer

	defaultClockSource = ClockDual
)

// SetDefaultClockSource changes the clock source new sessions start
// with. Applies the same platform-degrade rule Start does (spec §9
// supplemented feature: the original ignores an unsupported request
// here too, not only inside a running session).
func SetDefaultClockSource(clock ClockSource) {
	defaultClockSource = ResolveClockSource(clock)
}

// Start begins a new tracing session (spec §4.6). filename is used
// unless fd >= 0, in which case that already-open descriptor is
// adopted (and never auto-closed by this package, matching the
// original's DisableAutoClose). directToExternal routes the finished
// trace to external instead of opening any file at all; external may
// be nil unless directToExternal is true.
func Start(filename string, fd int, bufferSize int, flags uint32, directToExternal bool, external ChunkedSink, rt Runtime, instr Instrumentation) error {
	traceLock.Lock()
	if theTrace != nil {
		traceLock.Unlock()
		lifecycleStats.grp.Inc(lifecycleStats.hAlreadyActive)
		Log.ERR("%s\n", ErrAlreadyActive)
		return nil
	}
	traceLock.Unlock()

	rt.SuspendAll()

	var sink Sink
	if !directToExternal {
		s, err := openSink(filename, fd)
		if err != nil {
			rt.ResumeAll()
			return &RuntimeFailure{Op: ErrSinkOpenFailed.Error(), Err: err}
		}
		sink = s
	}

	traceLock.Lock()
	if theTrace != nil {
		traceLock.Unlock()
		rt.ResumeAll()
		if sink != nil {
			sink.Close()
		}
		lifecycleStats.grp.Inc(lifecycleStats.hAlreadyActive)
		Log.ERR("%s\n", ErrAlreadyActive)
		return nil
	}

	clock := ResolveClockSource(defaultClockSource)
	t := newTracer(sink, external, bufferSize, flags, clock)
	theTrace = t
	traceLock.Unlock()

	if flags&CountAllocs != 0 {
		rt.SetStatsEnabled(true)
	}
	instr.AddListener(TracedEventMask, t)
	lifecycleStats.grp.Inc(lifecycleStats.hStarted)

	rt.ResumeAll()
	return nil
}

// Stop ends the active tracing session, if any (spec §4.6): suspend
// all, atomically take the singleton slot, finalize and unregister
// while still stopped, resume all.
func Stop(rt Runtime, instr Instrumentation) error {
	rt.SuspendAll()

	traceLock.Lock()
	t := theTrace
	theTrace = nil
	traceLock.Unlock()

	if t == nil {
		rt.ResumeAll()
		lifecycleStats.grp.Inc(lifecycleStats.hStopNotActive)
		Log.ERR("%s\n", ErrNotActive)
		return nil
	}

	err := Finalize(t, rt)
	instr.RemoveListener(TracedEventMask, t)
	t.buf.Release()

	rt.ResumeAll()
	return err
}

// Shutdown stops the active session if one exists; it is a no-op
// otherwise (spec §4.6).
func Shutdown(rt Runtime, instr Instrumentation) error {
	if !IsActive() {
		return nil
	}
	return Stop(rt, instr)
}

// IsActive reports whether a tracing session currently exists.
func IsActive() bool {
	traceLock.Lock()
	defer traceLock.Unlock()
	return theTrace != nil
}
