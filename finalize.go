// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import (
	"bytes"
	"fmt"
	"sort"
)

// Finalize walks t's buffer, builds the textual preamble, and emits
// preamble+buffer to t's sink (spec §4.7). The Tracer is expected to
// be quiesced already (called from Stop, under the stop-the-world
// bracket), so the buffer cursor, read once through PublishedLen, has
// no publication-ordering concerns (spec §4.6 double-locking rationale).
func Finalize(t *Tracer, rt Runtime) error {
	elapsed := WallUs() - t.startTimeUs
	finalOffset := t.buf.PublishedLen()
	overheadNs := MeasureOverheadNs(t.clock)

	if t.flags&CountAllocs != 0 {
		rt.SetStatsEnabled(false)
	}

	visited := visitedMethods(t.buf.Bytes(), finalOffset, t.clock)

	preamble := buildPreamble(t, elapsed, finalOffset, overheadNs, visited, rt)

	if t.chunked != nil {
		err := t.chunked.SendChunk(TraceChunkType, [][]byte{[]byte(preamble), t.buf.Bytes()[:finalOffset]})
		if err != nil {
			Log.ERR("%s: %s\n", ErrSinkWriteFailed, err)
			return &RuntimeFailure{Op: ErrSinkWriteFailed.Error(), Err: err}
		}
		return nil
	}

	if err := t.sink.WriteFully([]byte(preamble)); err != nil {
		Log.ERR("%s: %s\n", ErrSinkWriteFailed, err)
		return &RuntimeFailure{Op: ErrSinkWriteFailed.Error(), Err: err}
	}
	if err := t.sink.WriteFully(t.buf.Bytes()[:finalOffset]); err != nil {
		Log.ERR("%s: %s\n", ErrSinkWriteFailed, err)
		return &RuntimeFailure{Op: ErrSinkWriteFailed.Error(), Err: err}
	}
	return t.sink.Close()
}

// visitedMethods decodes the method id at its fixed offset (2 bytes
// past each record's start) for every record in buf[HeaderLen:end],
// returning the distinct ids in ascending order. Grounded on the
// original's GetVisitedMethods/std::set<AbstractMethod*>; a Go
// container/ordered-set library has no home in this pack (see
// DESIGN.md), so this is a plain map-then-sort.
func visitedMethods(buf []byte, end int, clock ClockSource) []uint32 {
	sz := RecordSize(clock)
	seen := make(map[uint32]struct{})
	for off := HeaderLen; off+sz <= end; off += sz {
		tmid := GetU32LE(buf[off+2 : off+6])
		seen[DecodeMethodID(tmid)] = struct{}{}
	}
	ids := make([]uint32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func buildPreamble(t *Tracer, elapsedUs uint64, finalOffset int, overheadNs uint32, visited []uint32, rt Runtime) string {
	var b bytes.Buffer
	recSize := RecordSize(t.clock)
	numCalls := (finalOffset - HeaderLen) / recSize

	fmt.Fprintf(&b, "*version\n")
	fmt.Fprintf(&b, "%d\n", traceVersion(t.clock))
	fmt.Fprintf(&b, "data-file-overflow=%t\n", t.buf.Overflow())
	fmt.Fprintf(&b, "clock=%s\n", t.clock)
	fmt.Fprintf(&b, "elapsed-time-usec=%d\n", elapsedUs)
	fmt.Fprintf(&b, "num-method-calls=%d\n", numCalls)
	fmt.Fprintf(&b, "clock-call-overhead-nsec=%d\n", overheadNs)
	fmt.Fprintf(&b, "vm=art\n")
	if t.flags&CountAllocs != 0 {
		fmt.Fprintf(&b, "alloc-count=%d\n", rt.Stat(StatAllocatedObjects))
		fmt.Fprintf(&b, "alloc-size=%d\n", rt.Stat(StatAllocatedBytes))
		fmt.Fprintf(&b, "gc-count=%d\n", rt.Stat(StatGCInvocations))
	}

	fmt.Fprintf(&b, "*threads\n")
	for _, th := range rt.ThreadList() {
		fmt.Fprintf(&b, "%d\t%s\n", th.Tid, th.Name)
	}

	fmt.Fprintf(&b, "*methods\n")
	for _, id := range visited {
		m := rt.MethodMetadata(id)
		fmt.Fprintf(&b, "%#x\t%s\t%s\t%s\t%s\n", m.Method, m.ClassDescriptor, m.Name, m.Signature, m.SourceFile)
	}
	fmt.Fprintf(&b, "*end\n")

	return b.String()
}
