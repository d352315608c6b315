package bitpack

// WriteBits writes the low width bits of v into buf starting at bit offset
// off, most significant bit first. width must be at most 64; v is masked to
// width, so callers need not pre-mask. Bits of buf outside [off, off+width)
// are left untouched. Capacity is validated before any byte is modified, so
// a failed write leaves buf unchanged.
func WriteBits(buf []byte, off, width uint, v uint64) error {
	if err := checkCapacity(buf, off, width); err != nil {
		return err
	}
	if width == 0 {
		return nil
	}
	if width < 64 {
		v &= 1<<width - 1
	}

	for remaining := width; remaining > 0; {
		byteIdx := off / 8
		avail := 8 - off%8 // writable bits left in this byte
		n := avail
		if remaining < n {
			n = remaining
		}
		// Top n of the remaining bits, placed against the high end of the
		// available span. Clear first so sibling fields in the same byte
		// survive.
		chunk := byte(v>>(remaining-n)) & byte(uint(1)<<n-1)
		shift := avail - n
		mask := byte((uint(1)<<n - 1) << shift)
		buf[byteIdx] = buf[byteIdx]&^mask | chunk<<shift

		off += n
		remaining -= n
	}
	return nil
}

// ReadBits reads width bits from buf starting at bit offset off, most
// significant bit first, and returns them as an unsigned value in
// [0, 2^width). width must be at most 64. buf is never mutated.
func ReadBits(buf []byte, off, width uint) (uint64, error) {
	if err := checkCapacity(buf, off, width); err != nil {
		return 0, err
	}

	var out uint64
	for remaining := width; remaining > 0; {
		byteIdx := off / 8
		avail := 8 - off%8
		n := avail
		if remaining < n {
			n = remaining
		}
		shift := avail - n
		chunk := (uint64(buf[byteIdx]) >> shift) & (1<<n - 1)
		out = out<<n | chunk

		off += n
		remaining -= n
	}
	return out, nil
}
