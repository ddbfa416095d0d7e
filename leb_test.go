// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import "testing"

func TestU16LERoundTrip(t *testing.T) {
	for _, v := range []uint16{0, 1, 0x1234, 0xffff} {
		buf := make([]byte, 2)
		PutU16LE(buf, v)
		if got := GetU16LE(buf); got != v {
			t.Errorf("PutU16LE/GetU16LE(%d) = %d\n", v, got)
		}
	}
}

func TestU32LERoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x12345678, 0xffffffff} {
		buf := make([]byte, 4)
		PutU32LE(buf, v)
		if got := GetU32LE(buf); got != v {
			t.Errorf("PutU32LE/GetU32LE(%d) = %d\n", v, got)
		}
	}
}

func TestU64LERoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 0x123456789abcdef0, 0xffffffffffffffff} {
		buf := make([]byte, 8)
		PutU64LE(buf, v)
		if got := GetU64LE(buf); got != v {
			t.Errorf("PutU64LE/GetU64LE(%d) = %d\n", v, got)
		}
	}
}

func TestU32LEByteOrder(t *testing.T) {
	buf := make([]byte, 4)
	PutU32LE(buf, 0x10002000)
	want := []byte{0x00, 0x20, 0x00, 0x10}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x\n", i, buf[i], want[i])
		}
	}
}
