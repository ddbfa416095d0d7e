// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import (
	"runtime"
	"time"

	"github.com/intuitivelabs/timestamp"
)

// wallEpoch is the reference point all WallUs() deltas are computed
// against. Using timestamp.TS throughout (never raw time.Now()) keeps
// the same monotonic-ish source the teacher uses for all its interval
// math (cstimer.go).
var wallEpoch = timestamp.Now()

// WallUs returns monotonic-ish wall-clock microseconds, measured from
// the package's reference epoch.
func WallUs() uint64 {
	return uint64(timestamp.Now().Sub(wallEpoch) / time.Microsecond)
}

// ThreadCPUUs returns the calling thread's CPU time in microseconds.
// On platforms without a per-thread CPU clock it falls back to
// WallUs(); callers that care whether the real clock is in use should
// check ThreadCPUClockSupported().
func ThreadCPUUs() uint64 {
	if us, ok := rawThreadCPUUs(); ok {
		return us
	}
	return WallUs()
}

// ThreadCPUClockSupported reports whether this platform exposes a
// real per-thread CPU clock.
func ThreadCPUClockSupported() bool {
	_, ok := rawThreadCPUUs()
	return ok
}

// ResolveClockSource applies the "no per-thread clock on this
// platform" degrade rule (spec §4.2, and its SetDefaultClockSource
// sibling from original_source/runtime/trace.cc): a request for
// ClockThreadCPU or ClockDual is downgraded to ClockWall, with one
// warning per downgraded call, when the platform cannot supply
// thread-CPU timestamps.
func ResolveClockSource(requested ClockSource) ClockSource {
	if requested == ClockWall {
		return requested
	}
	if ThreadCPUClockSupported() {
		return requested
	}
	Log.WARN("thread-cpu clock requested but unavailable on this platform, using wall clock\n")
	return ClockWall
}

// MeasureOverheadNs calibrates the cost of reading the clock(s) in use
// by clock, performing the same 4000-outer x 8-inner sampling budget
// as the original implementation. The elapsed duration is always
// measured with the thread-CPU clock (falling back to wall if
// unsupported), regardless of which clock(s) are being calibrated —
// this matches original_source/runtime/trace.cc's GetClockOverhead,
// which times itself with ThreadCpuMicroTime() unconditionally.
func MeasureOverheadNs(clock ClockSource) uint32 {
	useCPU := clock == ClockThreadCPU || clock == ClockDual
	useWall := clock == ClockWall || clock == ClockDual

	// Pin to one OS thread so the start and end reads come from the
	// same per-thread CPU clock and the difference cannot underflow.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	start := ThreadCPUUs()
	for i := 0; i < 4000; i++ {
		for j := 0; j < 8; j++ {
			if useCPU {
				ThreadCPUUs()
			}
			if useWall {
				WallUs()
			}
		}
	}
	elapsed := ThreadCPUUs() - start
	return uint32(elapsed / 32)
}
