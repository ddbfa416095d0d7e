// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build !buf_qmalloc

package mtrace

import (
	"github.com/intuitivelabs/bytespool"
)

const bufBackendName = "buf_bytespool"

// bufPool is shared by every Tracer instance created in this process
// (there is at most one active at a time, but repeated start/stop
// cycles reuse the pool's sync.Pool-backed buckets instead of
// re-allocating a fresh megabyte-scale slice each time). Mirrors
// alloc_oneblock.go's package-level bPool.
var bufPool bytespool.Bpool

func init() {
	BuildTags = append(BuildTags, bufBackendName)
	if !bufPool.Init(0, 64*1024*1024, 4096) {
		Log.PANIC("event buffer pool init failed\n")
	}
}

// acquireEventBuf gets a zeroed size-byte slice from the shared pool.
func acquireEventBuf(size int) ([]byte, func([]byte)) {
	buf, ok := bufPool.Get(size, true)
	if !ok {
		buf = make([]byte, size)
	}
	return buf, releaseEventBuf
}

func releaseEventBuf(buf []byte) {
	bufPool.Put(buf) // ignored: false just means too big for the pool
}
