// Package bitwindow extracts fixed-width bit windows from byte buffers.
// The collision pipeline keys every stage on one such window, so the
// extraction rules live in exactly one place: bits are numbered MSB-first
// within the buffer (bit 0 is the high bit of buf[0]) and a window is read
// as a big-endian value. Windows may straddle byte boundaries.
package bitwindow

// MaxWidth is the widest window Extract can return.
const MaxWidth = 32

// Extract reads width bits starting at bit offset bitOff from buf and
// returns them as a right-aligned value. The second return is false when
// the window is empty, wider than MaxWidth, or reaches past the end of
// buf; no bytes outside buf are ever touched.
func Extract(buf []byte, bitOff, width uint) (uint32, bool) {
	if width == 0 || width > MaxWidth {
		return 0, false
	}
	end := bitOff + width
	if end > uint(len(buf))*8 {
		return 0, false
	}
	firstByte := bitOff / 8
	lastByte := (end + 7) / 8

	// At most 5 bytes contribute (32 bits across a byte boundary), so a
	// 64-bit accumulator cannot overflow.
	var acc uint64
	for i := firstByte; i < lastByte; i++ {
		acc = acc<<8 | uint64(buf[i])
	}
	acc >>= lastByte*8 - end
	if width == MaxWidth {
		return uint32(acc), true
	}
	return uint32(acc) & (1<<width - 1), true
}
