// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import (
	"fmt"
	"io"
)

// Tracer is one active tracing session. At most one exists
// process-wide; see lifecycle.go for the singleton slot that enforces
// this. All exported methods except the instrumentation callbacks are
// only ever called under the lifecycle's stop-the-world bracket.
type Tracer struct {
	buf         *eventBuffer
	clock       ClockSource
	flags       uint32
	startTimeUs uint64
	cpuBase     threadCPUBase
	stats       *sessionStats

	sink    Sink
	chunked ChunkedSink
}

// newTracer allocates the event buffer, writes the header, and
// resets the process-wide session counters group. It never touches
// Instrumentation or Runtime — that wiring happens in lifecycle.go's
// Start, under the same stop-the-world bracket this constructor runs
// in.
func newTracer(sink Sink, chunked ChunkedSink, bufferSize int, flags uint32, clock ClockSource) *Tracer {
	t := &Tracer{
		buf:         newEventBuffer(bufferSize),
		clock:       clock,
		flags:       flags,
		startTimeUs: WallUs(),
		sink:        sink,
		chunked:     chunked,
		stats:       sharedSessionStats(),
	}
	t.stats.reset()
	writeHeader(t.buf.Bytes(), t.clock, t.startTimeUs)
	return t
}

// OnMethodEntered implements InstrumentationListener.
func (t *Tracer) OnMethodEntered(thread uint16, method uint32) {
	t.logEvent(thread, method, EvMethodEntered)
}

// OnMethodExited implements InstrumentationListener. The return value
// instrumentation normally carries alongside this callback is not part
// of the trace format and is not consulted here.
func (t *Tracer) OnMethodExited(thread uint16, method uint32) {
	t.logEvent(thread, method, EvMethodExited)
}

// OnMethodUnwind implements InstrumentationListener.
func (t *Tracer) OnMethodUnwind(thread uint16, method uint32) {
	t.logEvent(thread, method, EvMethodUnwind)
}

// OnDexPCMoved implements InstrumentationListener. The tracer never
// registers for this event; if it fires anyway, that is a listener
// mis-registration defect, not a tracing decision — log and ignore, no
// record is written (spec §7 UnexpectedInstrumentationEvent).
func (t *Tracer) OnDexPCMoved(thread uint16, method uint32, newDexPC uint32) {
	Log.ERR("unexpected dex-pc-moved event while tracing method %d thread %d pc %d\n",
		method, thread, newDexPC)
}

// OnExceptionCaught implements InstrumentationListener, same
// not-registered-for-this defect handling as OnDexPCMoved.
func (t *Tracer) OnExceptionCaught(thread uint16, method uint32) {
	Log.ERR("unexpected exception-caught event while tracing method %d thread %d\n",
		method, thread)
}

// logEvent is the hot path (spec §4.5, §5), callable with any runtime
// lock except the trace's own held. It reserves space with a single
// lock-free CAS loop (eventBuffer.Reserve), encodes the record into the
// reserved slice, and returns — an overflow is a silent drop, never an
// error return to the instrumentation caller. With a thread-cpu or dual
// clock it also takes one per-bucket mutex in cpuBase.resolve, and the
// first event of a thread may allocate when its base is appended.
func (t *Tracer) logEvent(thread uint16, method uint32, event InstrumentationEvent) {
	action, ok := actionFor(event)
	if !ok {
		Log.PANIC("logEvent: unexpected instrumentation event %v\n", event)
	}

	n := RecordSize(t.clock)
	off, ok := t.buf.Reserve(n)
	if !ok {
		t.stats.recordDropped()
		t.stats.markOverflow()
		return
	}

	tmid := EncodeMethodAction(method, action)

	var dtCPU, dtWall uint32
	if t.clock == ClockThreadCPU || t.clock == ClockDual {
		now := ThreadCPUUs()
		d, isFirst := t.cpuBase.resolve(thread, now)
		dtCPU = d
		if isFirst {
			t.stats.cpuBaseInserted()
		}
	}
	if t.clock == ClockWall || t.clock == ClockDual {
		dtWall = uint32(WallUs() - t.startTimeUs)
	}

	EncodeRecord(t.buf.Bytes()[off:off+n], thread, tmid, t.clock, dtCPU, dtWall)
	t.stats.recordLogged()
}

func actionFor(event InstrumentationEvent) (TraceAction, bool) {
	switch event {
	case EvMethodEntered:
		return TraceMethodEnter, true
	case EvMethodExited:
		return TraceMethodExit, true
	case EvMethodUnwind:
		return TraceUnwind, true
	default:
		return 0, false
	}
}

// DebugDump walks the buffer's published records and writes one
// human-readable line per record to w: tid, method id, action. This
// restores the original implementation's DumpBuf helper (gated there
// behind a kDumpTraceInfo compile-time constant); here it is always
// available and left to callers (tests, an operator console command)
// to invoke — it plays no part in the on-disk trace format.
func (t *Tracer) DebugDump(w io.Writer) error {
	buf := t.buf.Bytes()
	end := t.buf.PublishedLen()
	sz := RecordSize(t.clock)
	for off := HeaderLen; off+sz <= end; off += sz {
		r := DecodeRecord(buf[off:off+sz], t.clock)
		if _, err := fmt.Fprintf(w, "tid=%d method=%d action=%s\n", r.Tid, r.Method, r.Action); err != nil {
			return err
		}
	}
	return nil
}
