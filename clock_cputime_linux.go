// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build linux

package mtrace

import (
	"golang.org/x/sys/unix"
)

// rawThreadCPUUs reads the calling OS thread's CPU time via
// CLOCK_THREAD_CPUTIME_ID. Unlike a process-wide CPU clock, this one
// is bound to the specific kernel thread that calls it, which is
// exactly the "per-thread CPU clock" the record format's dt_cpu field
// needs (one base per traced thread, not one for the whole process).
func rawThreadCPUUs() (uint64, bool) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_THREAD_CPUTIME_ID, &ts); err != nil {
		return 0, false
	}
	return uint64(ts.Sec)*1e6 + uint64(ts.Nsec)/1e3, true
}
