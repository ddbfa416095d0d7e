// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import (
	"sync/atomic"
)

// eventBuffer is the fixed-size byte region a Tracer writes records
// into. Reserve() is the sole synchronization point on the hot path:
// a compare-and-swap loop on the cursor claims a byte range, and the reserving thread
// then owns that range exclusively (no other writer will ever touch
// it). This mirrors alloc_plist.go's pUsedLst.Add reservation loop,
// generalized from "index into a block" to "byte offset into a
// buffer".
type eventBuffer struct {
	buf      []byte
	cursor   int32 // atomic, offset of next free byte
	overflow int32 // atomic bool (0/1), sticky once set
	release  func([]byte)
}

// newEventBuffer acquires a size-byte backing store (via whichever
// backend was built in — bytespool by default, qmalloc under the
// buf_qmalloc build tag) and returns a buffer whose cursor starts at
// HeaderLen, as spec §3 requires.
func newEventBuffer(size int) *eventBuffer {
	buf, release := acquireEventBuf(size)
	return &eventBuffer{
		buf:     buf,
		cursor:  HeaderLen,
		release: release,
	}
}

// Bytes returns the whole backing slice. Callers must only read
// buf[:PublishedLen()] while a session might still be live; the full
// slice is safe to read once the world is stopped (finalizer).
func (b *eventBuffer) Bytes() []byte {
	return b.buf
}

// Size returns the fixed capacity of the buffer.
func (b *eventBuffer) Size() int {
	return len(b.buf)
}

// Reserve atomically claims n bytes starting at the current cursor and
// returns that offset. It returns (0, false) once reserving n bytes
// would exceed the buffer's capacity; overflow is then set (sticky:
// once true, never reset) and no bytes are claimed.
//
// Progress is lock-free: a thread whose reservation would overflow
// never advances the cursor at all, so PublishedLen() never reports an
// offset past capacity (spec §3 invariant: cursor in
// [HeaderLen, buffer_size]).
func (b *eventBuffer) Reserve(n int) (int, bool) {
	for {
		old := atomic.LoadInt32(&b.cursor)
		next := old + int32(n)
		if int(next) > len(b.buf) {
			atomic.StoreInt32(&b.overflow, 1)
			return 0, false
		}
		if atomic.CompareAndSwapInt32(&b.cursor, old, next) {
			return int(old), true
		}
	}
}

// PublishedLen returns the current cursor. Safe to call once no
// concurrent Reserve can be in flight (i.e. with the world stopped);
// see spec §4.4.
func (b *eventBuffer) PublishedLen() int {
	return int(atomic.LoadInt32(&b.cursor))
}

// Overflow reports whether any Reserve call has ever failed.
func (b *eventBuffer) Overflow() bool {
	return atomic.LoadInt32(&b.overflow) != 0
}

// Release returns the backing store to whichever pool/arena produced
// it. Called once, from Tracer teardown.
func (b *eventBuffer) Release() {
	if b.release != nil {
		b.release(b.buf)
		b.buf, b.release = nil, nil
	}
}
