// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build buf_qmalloc

package mtrace

import (
	"reflect"
	"unsafe"

	"github.com/intuitivelabs/mallocs/qmalloc"
)

const bufBackendName = "buf_qmalloc"

// qm backs the event buffer with a fixed off-Go-heap arena: the
// tracer's buffer never contains pointers, so there is nothing to gain
// from GC-managed memory and everything to gain from not making the GC
// scan (and potentially move-account) a multi-megabyte byte slab on
// every collection. Mirrors alloc_qmalloc.go's arena setup.
var qm qmalloc.QMalloc

func init() {
	BuildTags = append(BuildTags, bufBackendName)
	arena := make([]byte, 256*1024*1024)
	if !qm.Init(arena, 14, qmalloc.QMDefaultOptions) {
		Log.PANIC("event buffer arena init failed\n")
	}
}

// acquireEventBuf carves size bytes out of the qmalloc arena and wraps
// them as a []byte, following alloc_qmalloc.go's raw
// reflect.SliceHeader construction over an unsafe.Pointer.
func acquireEventBuf(size int) ([]byte, func([]byte)) {
	p := qm.Malloc(uint64(size))
	if p == nil {
		Log.PANIC("event buffer arena exhausted (%d bytes requested)\n", size)
	}
	var buf []byte
	slice := (*reflect.SliceHeader)(unsafe.Pointer(&buf))
	slice.Data = uintptr(p)
	slice.Len = size
	slice.Cap = size
	return buf, releaseEventBuf
}

func releaseEventBuf(buf []byte) {
	if len(buf) == 0 {
		return
	}
	qm.Free(unsafe.Pointer(&buf[0]))
}
