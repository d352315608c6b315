package bitpack

import "fmt"

// Codec packs and unpacks values of one static shape. Width is a constant
// of the codec value; it never depends on the packed data.
type Codec[T any] interface {
	// Width is the number of bits a packed value occupies.
	Width() uint
	// Pack writes v into buf at bit offset off.
	Pack(buf []byte, off uint, v T) error
	// Unpack reconstructs a value from buf at bit offset off.
	Unpack(buf []byte, off uint) (T, error)
}

// unsigned are the exact unsigned integer types with a fixed packed width.
type unsigned interface {
	uint8 | uint16 | uint32 | uint64
}

// signed are the exact signed integer types with a fixed packed width.
type signed interface {
	int8 | int16 | int32 | int64
}

func unsignedWidth[T unsigned]() uint {
	switch any(T(0)).(type) {
	case uint8:
		return 8
	case uint16:
		return 16
	case uint32:
		return 32
	default:
		return 64
	}
}

func signedWidth[T signed]() uint {
	switch any(T(0)).(type) {
	case int8:
		return 8
	case int16:
		return 16
	case int32:
		return 32
	default:
		return 64
	}
}

type uintCodec[T unsigned] struct {
	width uint
}

func (c uintCodec[T]) Width() uint { return c.width }

func (c uintCodec[T]) Pack(buf []byte, off uint, v T) error {
	return WriteBits(buf, off, c.width, uint64(v))
}

func (c uintCodec[T]) Unpack(buf []byte, off uint) (T, error) {
	raw, err := ReadBits(buf, off, c.width)
	if err != nil {
		return 0, err
	}
	return T(raw), nil
}

type intCodec[T signed] struct {
	width uint
}

func (c intCodec[T]) Width() uint { return c.width }

// Pack stores the two's-complement bit pattern: converting a negative T to
// uint64 sign-extends, and WriteBits keeps only the low width bits.
func (c intCodec[T]) Pack(buf []byte, off uint, v T) error {
	return WriteBits(buf, off, c.width, uint64(v))
}

// Unpack sign-extends the width-bit pattern back into two's-complement via
// an arithmetic shift. Skipping this would corrupt every negative value.
func (c intCodec[T]) Unpack(buf []byte, off uint) (T, error) {
	raw, err := ReadBits(buf, off, c.width)
	if err != nil {
		return 0, err
	}
	return T(int64(raw<<(64-c.width)) >> (64 - c.width)), nil
}

type boolCodec struct{}

func (boolCodec) Width() uint { return 1 }

func (boolCodec) Pack(buf []byte, off uint, v bool) error {
	var bit uint64
	if v {
		bit = 1
	}
	return WriteBits(buf, off, 1, bit)
}

func (boolCodec) Unpack(buf []byte, off uint) (bool, error) {
	raw, err := ReadBits(buf, off, 1)
	if err != nil {
		return false, err
	}
	return raw != 0, nil
}

// U8 returns the codec for 8-bit unsigned integers.
func U8() Codec[uint8] { return uintCodec[uint8]{width: unsignedWidth[uint8]()} }

// U16 returns the codec for 16-bit unsigned integers.
func U16() Codec[uint16] { return uintCodec[uint16]{width: unsignedWidth[uint16]()} }

// U32 returns the codec for 32-bit unsigned integers.
func U32() Codec[uint32] { return uintCodec[uint32]{width: unsignedWidth[uint32]()} }

// U64 returns the codec for 64-bit unsigned integers.
func U64() Codec[uint64] { return uintCodec[uint64]{width: unsignedWidth[uint64]()} }

// I8 returns the codec for 8-bit signed integers.
func I8() Codec[int8] { return intCodec[int8]{width: signedWidth[int8]()} }

// I16 returns the codec for 16-bit signed integers.
func I16() Codec[int16] { return intCodec[int16]{width: signedWidth[int16]()} }

// I32 returns the codec for 32-bit signed integers.
func I32() Codec[int32] { return intCodec[int32]{width: signedWidth[int32]()} }

// I64 returns the codec for 64-bit signed integers.
func I64() Codec[int64] { return intCodec[int64]{width: signedWidth[int64]()} }

// Bool returns the 1-bit boolean codec; true packs as 1.
func Bool() Codec[bool] { return boolCodec{} }

// UintN returns a codec storing unsigned integers in exactly width bits,
// 1 through 64. Values must fit in width bits; high bits are truncated by
// the writer. Panics on a width outside that range, since codec shapes are
// fixed at construction.
func UintN(width uint) Codec[uint64] {
	mustValidWidth(width)
	return uintCodec[uint64]{width: width}
}

// IntN returns a codec storing signed integers as width-bit two's-complement,
// width 1 through 64. Panics on a width outside that range.
func IntN(width uint) Codec[int64] {
	mustValidWidth(width)
	return intCodec[int64]{width: width}
}

func mustValidWidth(width uint) {
	if width == 0 || width > 64 {
		panic(fmt.Sprintf("bitpack: integer width %d out of range [1, 64]", width))
	}
}
