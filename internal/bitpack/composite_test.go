package bitpack

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestArrayOrderPreservation(t *testing.T) {
	codec := Array(UintN(4), 3)
	if w := codec.Width(); w != 12 {
		t.Fatalf("width: got %d want 12", w)
	}
	buf := make([]byte, 2)
	if err := codec.Pack(buf, 0, []uint64{1, 2, 3}); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if !bytes.Equal(buf, []byte{0b0001_0010, 0b0011_0000}) {
		t.Fatalf("layout: got %08b", buf)
	}
	got, err := codec.Unpack(buf, 0)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !reflect.DeepEqual(got, []uint64{1, 2, 3}) {
		t.Fatalf("order not preserved: %v", got)
	}
}

func TestArrayRoundTripAtUnalignedOffset(t *testing.T) {
	codec := Array(I16(), 4)
	in := []int16{-1, 32000, -32000, 7}
	buf := make([]byte, 9)
	if err := codec.Pack(buf, 3, in); err != nil {
		t.Fatalf("pack: %v", err)
	}
	got, err := codec.Unpack(buf, 3)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("got %v want %v", got, in)
	}
}

func TestTupleAssociativity(t *testing.T) {
	// Packing the tuple must produce the same bytes as packing each element
	// at its consecutive sub-offset.
	tuple := Tuple(F(UintN(3)), F(Bool()), F(UintN(12)))
	const off = 5

	viaTuple := make([]byte, 4)
	if err := tuple.Pack(viaTuple, off, []any{uint64(0b101), true, uint64(0xABC)}); err != nil {
		t.Fatalf("tuple pack: %v", err)
	}

	viaLeaves := make([]byte, 4)
	if err := UintN(3).Pack(viaLeaves, off, 0b101); err != nil {
		t.Fatalf("leaf pack: %v", err)
	}
	if err := Bool().Pack(viaLeaves, off+3, true); err != nil {
		t.Fatalf("leaf pack: %v", err)
	}
	if err := UintN(12).Pack(viaLeaves, off+4, 0xABC); err != nil {
		t.Fatalf("leaf pack: %v", err)
	}

	if !bytes.Equal(viaTuple, viaLeaves) {
		t.Fatalf("tuple=%08b leaves=%08b", viaTuple, viaLeaves)
	}
}

func TestTupleRoundTrip(t *testing.T) {
	tuple := Tuple(F(U8()), F(I8()), F(Bool()), F(Array(UintN(4), 2)))
	if w := tuple.Width(); w != 25 {
		t.Fatalf("width: got %d want 25", w)
	}
	in := []any{uint8(0xA5), int8(-42), true, []uint64{0xF, 0x1}}
	buf := make([]byte, 5)
	if err := tuple.Pack(buf, 7, in); err != nil {
		t.Fatalf("pack: %v", err)
	}
	got, err := tuple.Unpack(buf, 7)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("got %v want %v", got, in)
	}
}

func TestCompositeCapacityCheckedBeforeAnyWrite(t *testing.T) {
	// The tuple is wider than the remaining space; even the leaves that
	// would fit must not run.
	tuple := Tuple(F(U8()), F(U16()))
	buf := []byte{0x11, 0x22, 0x33}
	err := tuple.Pack(buf, 8, []any{uint8(0xFF), uint16(0xFFFF)})
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if !bytes.Equal(buf, []byte{0x11, 0x22, 0x33}) {
		t.Fatalf("failed composite pack mutated buffer: %08b", buf)
	}
}

func TestArrayCapacityRejection(t *testing.T) {
	codec := Array(U8(), 4)
	buf := make([]byte, 3)
	var capErr *CapacityError
	err := codec.Pack(buf, 0, []uint8{1, 2, 3, 4})
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if _, err := codec.Unpack(buf, 0); !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError on unpack, got %v", err)
	}
}

func TestArrayPackPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for element count mismatch")
		}
	}()
	_ = Array(U8(), 2).Pack(make([]byte, 4), 0, []uint8{1})
}

func TestNestedComposites(t *testing.T) {
	// Array of tuples, each tuple a (3-bit, bool) pair.
	pair := Tuple(F(UintN(3)), F(Bool()))
	codec := Array(pair, 3)
	if w := codec.Width(); w != 12 {
		t.Fatalf("width: got %d want 12", w)
	}
	in := [][]any{
		{uint64(0b111), false},
		{uint64(0b010), true},
		{uint64(0b001), true},
	}
	buf := make([]byte, 2)
	if err := codec.Pack(buf, 0, in); err != nil {
		t.Fatalf("pack: %v", err)
	}
	got, err := codec.Unpack(buf, 0)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("got %v want %v", got, in)
	}
}
