package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/packctl/internal/layout"
	"github.com/danmuck/packctl/internal/logging"
)

func main() {
	layoutPath := flag.String("layout", "", "path to a layout TOML file")
	packJSON := flag.String("pack", "", "JSON object of field values to pack")
	unpackHex := flag.String("unpack", "", "hex-encoded buffer to unpack")
	offset := flag.Uint("offset", 0, "bit offset into the buffer")
	size := flag.Int("size", 0, "buffer size in bytes (pack only; default fits offset+layout)")
	flag.Parse()

	logging.ConfigureRuntime()

	if *layoutPath == "" {
		fail("missing -layout")
	}
	if (*packJSON == "") == (*unpackHex == "") {
		fail("exactly one of -pack or -unpack is required")
	}

	l, err := layout.Load(*layoutPath)
	if err != nil {
		fail(err.Error())
	}

	if *packJSON != "" {
		out, err := runPack(l, *packJSON, *offset, *size)
		if err != nil {
			fail(err.Error())
		}
		fmt.Println(out)
		return
	}

	out, err := runUnpack(l, *unpackHex, *offset)
	if err != nil {
		fail(err.Error())
	}
	fmt.Println(out)
}

// Buffer ceiling for one invocation, matching the layout compiler's 8 MiB
// layout cap.
const (
	maxPackBytes = 8 * 1024 * 1024
	maxPackBits  = maxPackBytes * 8
)

func runPack(l *layout.Compiled, rawJSON string, offset uint, size int) (string, error) {
	dec := json.NewDecoder(strings.NewReader(rawJSON))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return "", fmt.Errorf("parse -pack values: %w", err)
	}
	normalizeNumbers(values)

	if offset > maxPackBits {
		return "", fmt.Errorf("-offset %d exceeds the %d-bit ceiling", offset, maxPackBits)
	}
	if size < 0 {
		return "", fmt.Errorf("-size must be non-negative")
	}
	if size == 0 {
		// offset and the layout width are both bounded, so this sum cannot
		// wrap.
		size = int((uint64(offset) + uint64(l.Width()) + 7) / 8)
	}
	if size > maxPackBytes {
		return "", fmt.Errorf("buffer of %d bytes exceeds the %d-byte ceiling", size, maxPackBytes)
	}
	buf := make([]byte, size)
	if err := l.Pack(values, buf, offset); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func runUnpack(l *layout.Compiled, rawHex string, offset uint) (string, error) {
	buf, err := hex.DecodeString(strings.TrimSpace(rawHex))
	if err != nil {
		return "", fmt.Errorf("parse -unpack data: %w", err)
	}
	values, err := l.Unpack(buf, offset)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	if err := enc.Encode(values); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// normalizeNumbers rewrites json.Number leaves into int64/uint64 so 64-bit
// values survive without float64 rounding.
func normalizeNumbers(values map[string]any) {
	for k, v := range values {
		values[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return u
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i, it := range x {
			x[i] = normalizeValue(it)
		}
		return x
	case map[string]any:
		normalizeNumbers(x)
		return x
	default:
		return v
	}
}

func fail(msg string) {
	log.Error().Msg(msg)
	flag.Usage()
	os.Exit(1)
}
