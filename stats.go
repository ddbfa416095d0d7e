// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import (
	"sync"

	"github.com/intuitivelabs/counters"
)

// sessionStats mirrors the teacher's callsStats/regsStats grouping
// (callentry_lst.go, regentry_lst.go): a counters.Group registered
// once for the process and reset at the start of each session — at
// most one session is ever active (spec §3), so there is exactly one
// "current session" worth of counters to expose, and registering a
// fresh named group on every Start/Stop cycle would just accumulate
// stale groups in the process-wide registry.
type sessionStats struct {
	grp *counters.Group

	hRecords   counters.Handle
	hDropped   counters.Handle
	hOverflow  counters.Handle
	hCPUMissed counters.Handle // first-event-per-thread CPU base insertions
}

func newSessionStatsGroup(name string) *sessionStats {
	s := &sessionStats{}
	defs := [...]counters.Def{
		{H: &s.hRecords, Flags: 0, Cbk: nil, CbP: nil, Name: "records",
			Desc: "successfully reserved and encoded trace records"},
		{H: &s.hDropped, Flags: 0, Cbk: nil, CbP: nil, Name: "dropped",
			Desc: "events dropped because the buffer was full"},
		{H: &s.hOverflow, Flags: counters.CntMaxF, Cbk: nil, CbP: nil, Name: "overflow",
			Desc: "1 once the buffer has overflowed at least once, else 0"},
		{H: &s.hCPUMissed, Flags: 0, Cbk: nil, CbP: nil, Name: "cpu_base_inserts",
			Desc: "first-seen threads for which a thread-cpu base was recorded"},
	}
	entries := 16
	s.grp = counters.NewGroup(name, nil, entries)
	if s.grp == nil {
		s.grp = &counters.Group{}
		s.grp.Init(name, nil, entries)
	}
	if !s.grp.RegisterDefs(defs[:]) {
		Log.PANIC("newSessionStatsGroup: failed to register counters\n")
	}
	return s
}

var (
	sessionStatsOnce sync.Once
	globalSessionStats *sessionStats
)

// sharedSessionStats returns the process-wide session counters group,
// creating it on first use.
func sharedSessionStats() *sessionStats {
	sessionStatsOnce.Do(func() {
		globalSessionStats = newSessionStatsGroup("mtrace_session")
	})
	return globalSessionStats
}

// reset zeroes all counters at the start of a new session.
func (s *sessionStats) reset() {
	s.grp.Set(s.hRecords, counters.Val(0))
	s.grp.Set(s.hDropped, counters.Val(0))
	s.grp.Set(s.hOverflow, counters.Val(0))
	s.grp.Set(s.hCPUMissed, counters.Val(0))
}

func (s *sessionStats) recordLogged() {
	s.grp.Inc(s.hRecords)
}

func (s *sessionStats) recordDropped() {
	s.grp.Inc(s.hDropped)
}

func (s *sessionStats) markOverflow() {
	s.grp.Set(s.hOverflow, counters.Val(1))
}

func (s *sessionStats) cpuBaseInserted() {
	s.grp.Inc(s.hCPUMissed)
}

// lifecycleStats tracks Start/Stop boundary outcomes across the
// process lifetime (not reset between sessions, unlike sessionStats).
type lifecycleStatsT struct {
	grp *counters.Group

	hStarted       counters.Handle
	hAlreadyActive counters.Handle
	hStopNotActive counters.Handle
}

func newLifecycleStats() *lifecycleStatsT {
	s := &lifecycleStatsT{}
	defs := [...]counters.Def{
		{H: &s.hStarted, Flags: 0, Cbk: nil, CbP: nil, Name: "sessions_started",
			Desc: "trace sessions successfully started"},
		{H: &s.hAlreadyActive, Flags: 0, Cbk: nil, CbP: nil, Name: "start_already_active",
			Desc: "Start calls rejected because a session was already active"},
		{H: &s.hStopNotActive, Flags: 0, Cbk: nil, CbP: nil, Name: "stop_not_active",
			Desc: "Stop calls that found no active session"},
	}
	entries := 8
	s.grp = counters.NewGroup("mtrace_lifecycle", nil, entries)
	if s.grp == nil {
		s.grp = &counters.Group{}
		s.grp.Init("mtrace_lifecycle", nil, entries)
	}
	if !s.grp.RegisterDefs(defs[:]) {
		Log.PANIC("newLifecycleStats: failed to register counters\n")
	}
	return s
}

var lifecycleStats = newLifecycleStats()
