// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import "sync"

// threadCPUBucketsN is the number of stripes in the thread_cpu_base
// table (spec §9 open question). Sized like a small hash table, not a
// per-thread slot table, since the number of distinct traced threads
// over a session is unbounded but each bucket only ever holds the
// handful of threads that happen to hash together.
const threadCPUBucketsN = 64

type threadCPUEntry struct {
	tid  uint16
	base uint64
}

// threadCPUBucket is one stripe of the map, guarded by its own lock so
// unrelated threads never contend with each other — the same
// per-bucket-lock discipline evrate_lst.go's EvRateHash uses for its
// hash table (HTable []EvRateEntryLst, each with its own sync.Mutex).
type threadCPUBucket struct {
	lock    sync.Mutex
	entries []threadCPUEntry
}

// threadCPUBase resolves spec §4.5/§9: "the same thread cannot
// concurrently log two events" holds per-thread, but the map structure
// itself is shared across threads, so inserts and lookups from
// distinct threads must be safe to interleave.
type threadCPUBase struct {
	buckets [threadCPUBucketsN]threadCPUBucket
}

// resolve returns the CPU-time delta for tid at now (thread-cpu
// microseconds): 0 and isFirst=true if this is the first event ever
// logged for tid this session (and now is recorded as its base), or
// now-base and isFirst=false otherwise. The miss path takes a short,
// uncontended (single-bucket) lock; so does the hit path, since the
// entries slice isn't safe to scan without it — but the lock is always
// scoped to one bucket out of threadCPUBucketsN, never the whole map.
func (m *threadCPUBase) resolve(tid uint16, now uint64) (dtCPU uint32, isFirst bool) {
	b := &m.buckets[tid%threadCPUBucketsN]
	b.lock.Lock()
	defer b.lock.Unlock()
	for i := range b.entries {
		if b.entries[i].tid == tid {
			return uint32(now - b.entries[i].base), false
		}
	}
	b.entries = append(b.entries, threadCPUEntry{tid: tid, base: now})
	return 0, true
}
