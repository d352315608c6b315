package bitpack

import "fmt"

// CapacityError reports a requested bit range that does not fit in the
// buffer. It is the only error kind this package produces: value shapes are
// fixed at codec construction, so capacity is the one thing left to go wrong
// at pack/unpack time.
type CapacityError struct {
	Offset   uint // starting bit offset of the requested range
	Width    uint // width of the requested range in bits
	Capacity uint // total buffer capacity in bits
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("bitpack: %d bits at offset %d exceed buffer capacity of %d bits",
		e.Width, e.Offset, e.Capacity)
}

// checkCapacity validates [off, off+width) against buf before any mutation.
// The comparison never computes off+width, which could wrap for offsets near
// the top of the uint range and let an out-of-range request through.
func checkCapacity(buf []byte, off, width uint) error {
	capacity := uint(len(buf)) * 8
	if off > capacity || width > capacity-off {
		return &CapacityError{Offset: off, Width: width, Capacity: capacity}
	}
	return nil
}
