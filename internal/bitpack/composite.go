package bitpack

import "fmt"

// arrayCodec packs a fixed number of homogeneous elements consecutively.
type arrayCodec[T any] struct {
	elem Codec[T]
	n    int
}

// Array returns a codec for a fixed-size array of n elements of elem's
// shape, packed consecutively with no padding. Panics on negative n; length
// is part of the codec's shape and is fixed at construction.
func Array[T any](elem Codec[T], n int) Codec[[]T] {
	if n < 0 {
		panic(fmt.Sprintf("bitpack: negative array length %d", n))
	}
	return arrayCodec[T]{elem: elem, n: n}
}

func (c arrayCodec[T]) Width() uint {
	return uint(c.n) * c.elem.Width()
}

func (c arrayCodec[T]) Pack(buf []byte, off uint, v []T) error {
	if len(v) != c.n {
		panic(fmt.Sprintf("bitpack: array codec of length %d given %d elements", c.n, len(v)))
	}
	// Whole-composite bound first, so a failing pack never half-writes.
	if err := checkCapacity(buf, off, c.Width()); err != nil {
		return err
	}
	w := c.elem.Width()
	for i, el := range v {
		if err := c.elem.Pack(buf, off+uint(i)*w, el); err != nil {
			return err
		}
	}
	return nil
}

func (c arrayCodec[T]) Unpack(buf []byte, off uint) ([]T, error) {
	if err := checkCapacity(buf, off, c.Width()); err != nil {
		return nil, err
	}
	w := c.elem.Width()
	out := make([]T, c.n)
	for i := range out {
		el, err := c.elem.Unpack(buf, off+uint(i)*w)
		if err != nil {
			return nil, err
		}
		out[i] = el
	}
	return out, nil
}

// Field is one positional element of a tuple: a codec with its value type
// erased so heterogeneous shapes can sit in one sequence.
type Field interface {
	Width() uint
	// PackValue packs v, which must have the field's value type; a value of
	// any other dynamic type panics, since shape is fixed at construction.
	PackValue(buf []byte, off uint, v any) error
	// UnpackValue unpacks the field, returning its value type.
	UnpackValue(buf []byte, off uint) (any, error)
}

type field[T any] struct {
	c Codec[T]
}

// F adapts a typed codec into a tuple Field.
func F[T any](c Codec[T]) Field { return field[T]{c: c} }

func (f field[T]) Width() uint { return f.c.Width() }

func (f field[T]) PackValue(buf []byte, off uint, v any) error {
	return f.c.Pack(buf, off, v.(T))
}

func (f field[T]) UnpackValue(buf []byte, off uint) (any, error) {
	return f.c.Unpack(buf, off)
}

// tupleCodec packs a fixed heterogeneous sequence in declared order. Packing
// a tuple of (A, B) at offset O is bit-identical to packing A at O and B at
// O+width(A).
type tupleCodec struct {
	fields []Field
	width  uint
}

// Tuple returns a codec for the given field sequence. Values pack and
// unpack as a []any with one entry per field, in declared order.
func Tuple(fields ...Field) Codec[[]any] {
	var width uint
	for _, f := range fields {
		width += f.Width()
	}
	return tupleCodec{fields: fields, width: width}
}

func (c tupleCodec) Width() uint { return c.width }

func (c tupleCodec) Pack(buf []byte, off uint, v []any) error {
	if len(v) != len(c.fields) {
		panic(fmt.Sprintf("bitpack: tuple codec of %d fields given %d values", len(c.fields), len(v)))
	}
	if err := checkCapacity(buf, off, c.width); err != nil {
		return err
	}
	for i, f := range c.fields {
		if err := f.PackValue(buf, off, v[i]); err != nil {
			return err
		}
		off += f.Width()
	}
	return nil
}

func (c tupleCodec) Unpack(buf []byte, off uint) ([]any, error) {
	if err := checkCapacity(buf, off, c.width); err != nil {
		return nil, err
	}
	out := make([]any, len(c.fields))
	for i, f := range c.fields {
		v, err := f.UnpackValue(buf, off)
		if err != nil {
			return nil, err
		}
		out[i] = v
		off += f.Width()
	}
	return out, nil
}
