// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import "sync"

// fakeRuntime is a minimal Runtime collaborator for lifecycle/finalizer
// tests: no real thread suspension, just call counting and a fixed
// thread/method catalog.
type fakeRuntime struct {
	mu           sync.Mutex
	suspendCalls int
	resumeCalls  int
	statsEnabled bool
	threads      []ThreadInfo
	methods      map[uint32]MethodInfo
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		threads: []ThreadInfo{{Tid: 1, Name: "main"}},
		methods: map[uint32]MethodInfo{},
	}
}

func (r *fakeRuntime) SuspendAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspendCalls++
}

func (r *fakeRuntime) ResumeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumeCalls++
}

func (r *fakeRuntime) ThreadList() []ThreadInfo {
	return r.threads
}

func (r *fakeRuntime) SetStatsEnabled(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statsEnabled = on
}

func (r *fakeRuntime) Stat(kind StatKind) uint64 {
	return 0
}

func (r *fakeRuntime) MethodMetadata(method uint32) MethodInfo {
	if m, ok := r.methods[method]; ok {
		return m
	}
	return MethodInfo{Method: method, Name: "unknown"}
}

// fakeInstrumentation records AddListener/RemoveListener calls without
// actually dispatching any events.
type fakeInstrumentation struct {
	mu        sync.Mutex
	listeners []InstrumentationListener
}

func (i *fakeInstrumentation) AddListener(events EventMask, l InstrumentationListener) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.listeners = append(i.listeners, l)
}

func (i *fakeInstrumentation) RemoveListener(events EventMask, l InstrumentationListener) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx, cur := range i.listeners {
		if cur == l {
			i.listeners = append(i.listeners[:idx], i.listeners[idx+1:]...)
			return
		}
	}
}

func (i *fakeInstrumentation) listenerCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.listeners)
}

// fakeChunkedSink captures the chunks a direct-to-external session
// sends, standing in for a debugger transport.
type fakeChunkedSink struct {
	mu     sync.Mutex
	chunks [][][]byte
}

func (s *fakeChunkedSink) SendChunk(chunkType [4]byte, parts [][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, parts)
	return nil
}
