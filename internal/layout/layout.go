// Package layout owns named bit-field layouts.
//
// Ownership boundary:
// - TOML layout file parsing
// - construction-time validation of field names, kinds, and widths
// - compiling a layout into bitpack codecs and packing/unpacking by name
package layout

import (
	"fmt"
	"math"
	"os"

	"github.com/danmuck/packctl/internal/bitpack"
	"github.com/pelletier/go-toml/v2"
)

// Field kinds accepted in layout files.
const (
	KindUint = "uint"
	KindInt  = "int"
	KindBool = "bool"
)

// maxLayoutBits caps a compiled layout at 8 MiB of packed data. The ceiling
// keeps field widths and array lengths small enough that no downstream
// offset or width arithmetic can wrap.
const maxLayoutBits = 8 * 1024 * 1024 * 8

// FieldSpec declares one named bit field. Width is in bits; bool fields are
// always 1 bit wide and may omit it. Length > 0 makes the field a fixed-size
// array of that element shape.
type FieldSpec struct {
	Name   string `toml:"name"`
	Kind   string `toml:"kind"`
	Width  uint   `toml:"width"`
	Length int    `toml:"length"`
}

// Layout is the on-disk shape of a layout file.
type Layout struct {
	Name   string      `toml:"name"`
	Fields []FieldSpec `toml:"field"`
}

// ValidationError reports a layout that cannot be compiled.
type ValidationError struct {
	Layout string
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("layout: %s: %s", e.Layout, e.Reason)
	}
	return fmt.Sprintf("layout: %s field %q: %s", e.Layout, e.Field, e.Reason)
}

type compiledField struct {
	spec  FieldSpec
	codec bitpack.Field
	off   uint // bit offset relative to the layout start
}

// Compiled is a validated layout ready to pack and unpack values by field
// name. Field order and sub-offsets are fixed at compile time.
type Compiled struct {
	name   string
	fields []compiledField
	byName map[string]int
	width  uint
}

// Load reads and compiles a layout file.
func Load(path string) (*Compiled, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout load failed (%s): %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("layout load failed (%s): %w", path, err)
	}
	return c, nil
}

// Parse compiles a layout from TOML bytes.
func Parse(data []byte) (*Compiled, error) {
	var l Layout
	if err := toml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("layout parse failed: %w", err)
	}
	return l.Compile()
}

// Compile validates the layout and resolves every field to a codec and a
// relative bit offset.
func (l Layout) Compile() (*Compiled, error) {
	if l.Name == "" {
		return nil, ValidationError{Layout: "(unnamed)", Reason: "missing name"}
	}
	if len(l.Fields) == 0 {
		return nil, ValidationError{Layout: l.Name, Reason: "no fields"}
	}

	c := &Compiled{
		name:   l.Name,
		fields: make([]compiledField, 0, len(l.Fields)),
		byName: make(map[string]int, len(l.Fields)),
	}
	for _, spec := range l.Fields {
		if spec.Name == "" {
			return nil, ValidationError{Layout: l.Name, Reason: "field with empty name"}
		}
		if _, dup := c.byName[spec.Name]; dup {
			return nil, ValidationError{Layout: l.Name, Field: spec.Name, Reason: "duplicate field name"}
		}
		codec, err := compileField(l.Name, spec)
		if err != nil {
			return nil, err
		}
		if uint64(c.width)+uint64(codec.Width()) > maxLayoutBits {
			return nil, ValidationError{Layout: l.Name, Field: spec.Name,
				Reason: fmt.Sprintf("layout exceeds %d bits", maxLayoutBits)}
		}
		c.byName[spec.Name] = len(c.fields)
		c.fields = append(c.fields, compiledField{spec: spec, codec: codec, off: c.width})
		c.width += codec.Width()
	}
	return c, nil
}

func compileField(layoutName string, spec FieldSpec) (bitpack.Field, error) {
	if spec.Length < 0 {
		return nil, ValidationError{Layout: layoutName, Field: spec.Name, Reason: "negative length"}
	}
	if spec.Length > 0 {
		// Bound the element count before the array codec is built; the
		// codec's width arithmetic assumes it cannot wrap.
		elemWidth := spec.Width
		if spec.Kind == KindBool {
			elemWidth = 1
		}
		if elemWidth > 0 && uint64(spec.Length) > maxLayoutBits/uint64(elemWidth) {
			return nil, ValidationError{Layout: layoutName, Field: spec.Name,
				Reason: fmt.Sprintf("array of %d %d-bit elements exceeds %d bits", spec.Length, elemWidth, maxLayoutBits)}
		}
	}

	var elem bitpack.Field
	switch spec.Kind {
	case KindUint:
		if spec.Width == 0 || spec.Width > 64 {
			return nil, ValidationError{Layout: layoutName, Field: spec.Name,
				Reason: fmt.Sprintf("uint width %d out of range [1, 64]", spec.Width)}
		}
		if spec.Length > 0 {
			return bitpack.F(bitpack.Array(bitpack.UintN(spec.Width), spec.Length)), nil
		}
		elem = bitpack.F(bitpack.UintN(spec.Width))
	case KindInt:
		if spec.Width == 0 || spec.Width > 64 {
			return nil, ValidationError{Layout: layoutName, Field: spec.Name,
				Reason: fmt.Sprintf("int width %d out of range [1, 64]", spec.Width)}
		}
		if spec.Length > 0 {
			return bitpack.F(bitpack.Array(bitpack.IntN(spec.Width), spec.Length)), nil
		}
		elem = bitpack.F(bitpack.IntN(spec.Width))
	case KindBool:
		if spec.Width > 1 {
			return nil, ValidationError{Layout: layoutName, Field: spec.Name,
				Reason: fmt.Sprintf("bool width must be 1, got %d", spec.Width)}
		}
		if spec.Length > 0 {
			return bitpack.F(bitpack.Array(bitpack.Bool(), spec.Length)), nil
		}
		elem = bitpack.F(bitpack.Bool())
	default:
		return nil, ValidationError{Layout: layoutName, Field: spec.Name,
			Reason: fmt.Sprintf("unknown kind %q", spec.Kind)}
	}
	return elem, nil
}

// Name returns the layout's declared name.
func (c *Compiled) Name() string { return c.name }

// Width returns the total packed width in bits.
func (c *Compiled) Width() uint { return c.width }

// SizeBytes returns the smallest whole-byte buffer the layout fits in when
// packed at offset 0.
func (c *Compiled) SizeBytes() int { return int((c.width + 7) / 8) }

// FieldNames returns the field names in declared order.
func (c *Compiled) FieldNames() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.spec.Name
	}
	return names
}

// Pack writes every field of values into buf starting at bit offset off.
// values must contain exactly the layout's field names. Capacity failures
// surface the bitpack error unchanged; value-domain problems (unknown or
// missing fields, out-of-range values) are reported before any write.
func (c *Compiled) Pack(values map[string]any, buf []byte, off uint) error {
	for name := range values {
		if _, ok := c.byName[name]; !ok {
			return fmt.Errorf("layout %s: unknown field %q", c.name, name)
		}
	}
	// Coerce everything up front so a bad value never half-writes.
	coerced := make([]any, len(c.fields))
	for i, f := range c.fields {
		raw, ok := values[f.spec.Name]
		if !ok {
			return fmt.Errorf("layout %s: missing field %q", c.name, f.spec.Name)
		}
		v, err := coerceValue(f.spec, raw)
		if err != nil {
			return fmt.Errorf("layout %s: field %q: %w", c.name, f.spec.Name, err)
		}
		coerced[i] = v
	}
	if capacity := uint(len(buf)) * 8; off > capacity || c.width > capacity-off {
		return &bitpack.CapacityError{Offset: off, Width: c.width, Capacity: capacity}
	}
	for i, f := range c.fields {
		if err := f.codec.PackValue(buf, off+f.off, coerced[i]); err != nil {
			return err
		}
	}
	return nil
}

// Unpack reconstructs every field from buf starting at bit offset off.
func (c *Compiled) Unpack(buf []byte, off uint) (map[string]any, error) {
	if capacity := uint(len(buf)) * 8; off > capacity || c.width > capacity-off {
		return nil, &bitpack.CapacityError{Offset: off, Width: c.width, Capacity: capacity}
	}
	out := make(map[string]any, len(c.fields))
	for _, f := range c.fields {
		v, err := f.codec.UnpackValue(buf, off+f.off)
		if err != nil {
			return nil, err
		}
		out[f.spec.Name] = v
	}
	return out, nil
}

func coerceValue(spec FieldSpec, raw any) (any, error) {
	if spec.Length > 0 {
		items, err := asSlice(raw)
		if err != nil {
			return nil, err
		}
		if len(items) != spec.Length {
			return nil, fmt.Errorf("expected %d elements, got %d", spec.Length, len(items))
		}
		switch spec.Kind {
		case KindUint:
			out := make([]uint64, len(items))
			for i, it := range items {
				v, err := asUint(it, spec.Width)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				out[i] = v
			}
			return out, nil
		case KindInt:
			out := make([]int64, len(items))
			for i, it := range items {
				v, err := asInt(it, spec.Width)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				out[i] = v
			}
			return out, nil
		default:
			out := make([]bool, len(items))
			for i, it := range items {
				v, ok := it.(bool)
				if !ok {
					return nil, fmt.Errorf("element %d: expected bool, got %T", i, it)
				}
				out[i] = v
			}
			return out, nil
		}
	}

	switch spec.Kind {
	case KindUint:
		return asUint(raw, spec.Width)
	case KindInt:
		return asInt(raw, spec.Width)
	default:
		v, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return v, nil
	}
}

func asSlice(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case []uint64:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	case []int64:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	case []bool:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected array, got %T", raw)
	}
}

func asUint(raw any, width uint) (uint64, error) {
	var v uint64
	switch x := raw.(type) {
	case uint64:
		v = x
	case uint:
		v = uint64(x)
	case int:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d for uint field", x)
		}
		v = uint64(x)
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d for uint field", x)
		}
		v = uint64(x)
	case float64:
		if x < 0 || x != math.Trunc(x) {
			return 0, fmt.Errorf("value %v is not an unsigned integer", x)
		}
		v = uint64(x)
	default:
		return 0, fmt.Errorf("expected unsigned integer, got %T", raw)
	}
	if width < 64 && v > 1<<width-1 {
		return 0, fmt.Errorf("value %d does not fit in %d bits", v, width)
	}
	return v, nil
}

func asInt(raw any, width uint) (int64, error) {
	var v int64
	switch x := raw.(type) {
	case int64:
		v = x
	case int:
		v = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int field", x)
		}
		v = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("value %v is not an integer", x)
		}
		v = int64(x)
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
	if width < 64 {
		min := int64(-1) << (width - 1)
		max := int64(1)<<(width-1) - 1
		if v < min || v > max {
			return 0, fmt.Errorf("value %d does not fit in %d-bit two's-complement", v, width)
		}
	}
	return v, nil
}
