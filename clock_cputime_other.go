// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build !linux

package mtrace

// rawThreadCPUUs: no per-thread CPU clock on this platform. Callers
// fall back to the wall clock (see ThreadCPUUs / ResolveClockSource).
func rawThreadCPUUs() (uint64, bool) {
	return 0, false
}
