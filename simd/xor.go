package simd

import "encoding/binary"

// The XOR kernels below differ only in how many 64-bit lanes they unroll
// per iteration, mirroring the 128/256/512-bit register widths. Tails
// shorter than a full chunk fall back to the byte loop, so every kernel
// returns identical bytes for identical inputs.

func xorScalar(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

func xor128(dst, a, b []byte) {
	n := len(dst)
	i := 0
	for ; i+16 <= n; i += 16 {
		x0 := binary.LittleEndian.Uint64(a[i:]) ^ binary.LittleEndian.Uint64(b[i:])
		x1 := binary.LittleEndian.Uint64(a[i+8:]) ^ binary.LittleEndian.Uint64(b[i+8:])
		binary.LittleEndian.PutUint64(dst[i:], x0)
		binary.LittleEndian.PutUint64(dst[i+8:], x1)
	}
	xorScalar(dst[i:], a[i:], b[i:])
}

func xor256(dst, a, b []byte) {
	n := len(dst)
	i := 0
	for ; i+32 <= n; i += 32 {
		x0 := binary.LittleEndian.Uint64(a[i:]) ^ binary.LittleEndian.Uint64(b[i:])
		x1 := binary.LittleEndian.Uint64(a[i+8:]) ^ binary.LittleEndian.Uint64(b[i+8:])
		x2 := binary.LittleEndian.Uint64(a[i+16:]) ^ binary.LittleEndian.Uint64(b[i+16:])
		x3 := binary.LittleEndian.Uint64(a[i+24:]) ^ binary.LittleEndian.Uint64(b[i+24:])
		binary.LittleEndian.PutUint64(dst[i:], x0)
		binary.LittleEndian.PutUint64(dst[i+8:], x1)
		binary.LittleEndian.PutUint64(dst[i+16:], x2)
		binary.LittleEndian.PutUint64(dst[i+24:], x3)
	}
	xor128(dst[i:], a[i:], b[i:])
}

func xor512(dst, a, b []byte) {
	n := len(dst)
	i := 0
	for ; i+64 <= n; i += 64 {
		x0 := binary.LittleEndian.Uint64(a[i:]) ^ binary.LittleEndian.Uint64(b[i:])
		x1 := binary.LittleEndian.Uint64(a[i+8:]) ^ binary.LittleEndian.Uint64(b[i+8:])
		x2 := binary.LittleEndian.Uint64(a[i+16:]) ^ binary.LittleEndian.Uint64(b[i+16:])
		x3 := binary.LittleEndian.Uint64(a[i+24:]) ^ binary.LittleEndian.Uint64(b[i+24:])
		x4 := binary.LittleEndian.Uint64(a[i+32:]) ^ binary.LittleEndian.Uint64(b[i+32:])
		x5 := binary.LittleEndian.Uint64(a[i+40:]) ^ binary.LittleEndian.Uint64(b[i+40:])
		x6 := binary.LittleEndian.Uint64(a[i+48:]) ^ binary.LittleEndian.Uint64(b[i+48:])
		x7 := binary.LittleEndian.Uint64(a[i+56:]) ^ binary.LittleEndian.Uint64(b[i+56:])
		binary.LittleEndian.PutUint64(dst[i:], x0)
		binary.LittleEndian.PutUint64(dst[i+8:], x1)
		binary.LittleEndian.PutUint64(dst[i+16:], x2)
		binary.LittleEndian.PutUint64(dst[i+24:], x3)
		binary.LittleEndian.PutUint64(dst[i+32:], x4)
		binary.LittleEndian.PutUint64(dst[i+40:], x5)
		binary.LittleEndian.PutUint64(dst[i+48:], x6)
		binary.LittleEndian.PutUint64(dst[i+56:], x7)
	}
	xor256(dst[i:], a[i:], b[i:])
}
