// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

// TraceAction is the 2-bit enum packed into the low bits of a record's
// method identifier.
type TraceAction uint8

const (
	TraceMethodEnter TraceAction = 0x00
	TraceMethodExit  TraceAction = 0x01
	TraceUnwind      TraceAction = 0x02
	// 0x03 reserved, currently unused.
	traceActionMask TraceAction = 0x03
)

func (a TraceAction) String() string {
	switch a {
	case TraceMethodEnter:
		return "enter"
	case TraceMethodExit:
		return "exit"
	case TraceUnwind:
		return "unwind"
	default:
		return "reserved"
	}
}

const (
	recordSizeSingleClock = 10
	recordSizeDualClock   = 14
)

// RecordSize returns the fixed per-record size for the given clock
// source: 10 bytes for a single clock, 14 for dual.
func RecordSize(clock ClockSource) int {
	if clock == ClockDual {
		return recordSizeDualClock
	}
	return recordSizeSingleClock
}

// EncodeMethodAction keeps methodRef's upper 30 bits unshifted as the
// upper 30 bits of the result and puts action into the low 2 bits. methodRef must
// be 4-byte aligned (its low 2 bits must be zero) — this is the
// method-id space's ABI contract, asserted here rather than silently
// truncated.
func EncodeMethodAction(methodRef uint32, action TraceAction) uint32 {
	if methodRef&uint32(traceActionMask) != 0 {
		Log.PANIC("EncodeMethodAction: unaligned method ref %#x\n", methodRef)
	}
	return methodRef | uint32(action&traceActionMask)
}

// DecodeMethodID extracts the method reference from a packed
// (method, action) word.
func DecodeMethodID(tmid uint32) uint32 {
	return tmid &^ uint32(traceActionMask)
}

// DecodeAction extracts the action from a packed (method, action) word.
func DecodeAction(tmid uint32) TraceAction {
	return TraceAction(tmid & uint32(traceActionMask))
}

// EncodeRecord writes one record into dst[0:RecordSize(clock)]:
// tid, method|action, then dt_cpu and/or dt_wall depending on clock.
// dst must have at least RecordSize(clock) bytes available.
func EncodeRecord(dst []byte, tid uint16, tmid uint32, clock ClockSource, dtCPU, dtWall uint32) {
	PutU16LE(dst[0:2], tid)
	PutU32LE(dst[2:6], tmid)
	off := 6
	if clock == ClockThreadCPU || clock == ClockDual {
		PutU32LE(dst[off:off+4], dtCPU)
		off += 4
	}
	if clock == ClockWall || clock == ClockDual {
		PutU32LE(dst[off:off+4], dtWall)
		off += 4
	}
}

// DecodedRecord is the in-memory form of one on-disk record, used by
// Tracer.DebugDump and by round-trip tests.
type DecodedRecord struct {
	Tid    uint16
	Method uint32
	Action TraceAction
	DtCPU  uint32 // valid iff clock uses thread-cpu
	DtWall uint32 // valid iff clock uses wall
}

// DecodeRecord reads one record of the given clock kind from
// src[0:RecordSize(clock)].
func DecodeRecord(src []byte, clock ClockSource) DecodedRecord {
	tmid := GetU32LE(src[2:6])
	r := DecodedRecord{
		Tid:    GetU16LE(src[0:2]),
		Method: DecodeMethodID(tmid),
		Action: DecodeAction(tmid),
	}
	off := 6
	if clock == ClockThreadCPU || clock == ClockDual {
		r.DtCPU = GetU32LE(src[off : off+4])
		off += 4
	}
	if clock == ClockWall || clock == ClockDual {
		r.DtWall = GetU32LE(src[off : off+4])
		off += 4
	}
	return r
}
