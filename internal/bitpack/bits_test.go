package bitpack

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteBitsDocumentedVector(t *testing.T) {
	// 42 as a 16-bit value at bit offset 3.
	buf := make([]byte, 3)
	if err := WriteBits(buf, 3, 16, 42); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []byte{0b0000_0000, 0b0000_0101, 0b0100_0000}
	if !bytes.Equal(buf, want) {
		t.Fatalf("buffer mismatch: got=%08b want=%08b", buf, want)
	}
}

func TestWriteBitsBoundaryCrossing(t *testing.T) {
	// An 11-bit value straddling two byte boundaries.
	buf := make([]byte, 3)
	if err := WriteBits(buf, 5, 11, 0b101_0110_1101); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []byte{0b0000_0101, 0b0110_1101, 0b0000_0000}
	if !bytes.Equal(buf, want) {
		t.Fatalf("buffer mismatch: got=%08b want=%08b", buf, want)
	}
}

func TestWriteBitsReadBitsRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		width uint
		value uint64
	}{
		{"one_bit", 1, 1},
		{"three_bits", 3, 0b101},
		{"full_byte", 8, 0xA7},
		{"eleven_bits", 11, 0x56D},
		{"sixteen_bits", 16, 0xBEEF},
		{"thirty_three_bits", 33, 0x1_F00D_CAFE},
		{"sixty_four_bits", 64, 0xDEAD_BEEF_F00D_CAFE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for off := uint(0); off <= 16; off++ {
				buf := make([]byte, 10)
				if err := WriteBits(buf, off, tt.width, tt.value); err != nil {
					t.Fatalf("write at offset %d: %v", off, err)
				}
				got, err := ReadBits(buf, off, tt.width)
				if err != nil {
					t.Fatalf("read at offset %d: %v", off, err)
				}
				if got != tt.value {
					t.Fatalf("offset %d: got %#x want %#x", off, got, tt.value)
				}
			}
		})
	}
}

func TestWriteBitsLeavesSiblingBitsUntouched(t *testing.T) {
	// Writing into a saturated buffer must clear exactly the target range.
	buf := []byte{0xFF, 0xFF, 0xFF}
	if err := WriteBits(buf, 5, 11, 0); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []byte{0b1111_1000, 0b0000_0000, 0b1111_1111}
	if !bytes.Equal(buf, want) {
		t.Fatalf("buffer mismatch: got=%08b want=%08b", buf, want)
	}

	// And the mirror case: setting bits in a zero buffer.
	buf = []byte{0x00, 0x00, 0x00}
	if err := WriteBits(buf, 5, 11, 0x7FF); err != nil {
		t.Fatalf("write: %v", err)
	}
	want = []byte{0b0000_0111, 0b1111_1111, 0b0000_0000}
	if !bytes.Equal(buf, want) {
		t.Fatalf("buffer mismatch: got=%08b want=%08b", buf, want)
	}
}

func TestWriteBitsMasksValueToWidth(t *testing.T) {
	buf := make([]byte, 1)
	if err := WriteBits(buf, 0, 3, 0xFF); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf[0] != 0b1110_0000 {
		t.Fatalf("got %08b, want 11100000", buf[0])
	}
}

func TestWriteBitsCapacityRejection(t *testing.T) {
	// 9 bits requested with only 8 left; the buffer must stay untouched.
	buf := []byte{0xAA, 0xBB, 0xCC}
	err := WriteBits(buf, uint(len(buf))*8-8, 9, 0x1FF)
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if capErr.Offset != 16 || capErr.Width != 9 || capErr.Capacity != 24 {
		t.Fatalf("unexpected error fields: %+v", capErr)
	}
	if !bytes.Equal(buf, []byte{0xAA, 0xBB, 0xCC}) {
		t.Fatalf("buffer mutated on failed write: %08b", buf)
	}
}

func TestReadBitsCapacityRejection(t *testing.T) {
	buf := make([]byte, 2)
	_, err := ReadBits(buf, 10, 7)
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
}

func TestWriteBitsZeroWidth(t *testing.T) {
	buf := []byte{0x42}
	if err := WriteBits(buf, 8, 0, 0); err != nil {
		t.Fatalf("zero-width write at end of buffer: %v", err)
	}
	if buf[0] != 0x42 {
		t.Fatalf("zero-width write mutated buffer: %02x", buf[0])
	}
	got, err := ReadBits(buf, 8, 0)
	if err != nil || got != 0 {
		t.Fatalf("zero-width read: got=%d err=%v", got, err)
	}
	// The empty range still has to fit.
	if err := WriteBits(buf, 9, 0, 0); err == nil {
		t.Fatalf("expected CapacityError for offset past end")
	}
}

func TestCapacityCheckSurvivesOffsetNearMaxUint(t *testing.T) {
	// An offset this large used to wrap the off+width bound computation and
	// slip past the check into an out-of-range index.
	buf := make([]byte, 1)
	for _, off := range []uint{^uint(0), ^uint(0) - 3, ^uint(0) - 7} {
		err := WriteBits(buf, off, 8, 0xFF)
		var capErr *CapacityError
		if !errors.As(err, &capErr) {
			t.Fatalf("write at offset %d: expected CapacityError, got %v", off, err)
		}
		if buf[0] != 0 {
			t.Fatalf("write at offset %d mutated buffer: %08b", off, buf[0])
		}
		if _, err := ReadBits(buf, off, 8); !errors.As(err, &capErr) {
			t.Fatalf("read at offset %d: expected CapacityError, got %v", off, err)
		}
	}
}

func TestReadBitsDoesNotMutate(t *testing.T) {
	buf := []byte{0x8F, 0x55}
	if _, err := ReadBits(buf, 4, 9); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf, []byte{0x8F, 0x55}) {
		t.Fatalf("read mutated buffer: %08b", buf)
	}
}
