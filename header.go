// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

const (
	HeaderLen          = 32
	traceMagic  uint32 = 0x574f4c53 // 'S','L','O','W' little-endian
	versionSingleClock uint16 = 2
	versionDualClock   uint16 = 3
)

func traceVersion(clock ClockSource) uint16 {
	if clock == ClockDual {
		return versionDualClock
	}
	return versionSingleClock
}

// writeHeader fills buf[0:HeaderLen] with the trace file header:
// magic, version, offset-to-data, start time, and (version>=3) the
// record size, zero-padded to HeaderLen. Called once, single-threaded,
// from the Tracer constructor.
func writeHeader(buf []byte, clock ClockSource, startTimeUs uint64) {
	for i := 0; i < HeaderLen; i++ {
		buf[i] = 0
	}
	version := traceVersion(clock)
	PutU32LE(buf[0:4], traceMagic)
	PutU16LE(buf[4:6], version)
	PutU16LE(buf[6:8], HeaderLen)
	PutU64LE(buf[8:16], startTimeUs)
	if version >= versionDualClock {
		PutU16LE(buf[16:18], uint16(RecordSize(clock)))
	}
}
