package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/danmuck/packctl/internal/layout"
)

const pairToml = `
name = "pair"

[[field]]
name = "hi"
kind = "uint"
width = 3

[[field]]
name = "lo"
kind = "uint"
width = 13
`

func TestRunPackRunUnpackRoundTrip(t *testing.T) {
	l, err := layout.Parse([]byte(pairToml))
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}

	out, err := runPack(l, `{"hi": 5, "lo": 6844}`, 0, 0)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if out != "babc" {
		t.Fatalf("hex output: got %q want %q", out, "babc")
	}

	decoded, err := runUnpack(l, out, 0)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(decoded), &values); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if values["hi"] != float64(5) || values["lo"] != float64(6844) {
		t.Fatalf("values mismatch: %v", values)
	}
}

func TestRunPackLargeUint64Survives(t *testing.T) {
	l, err := layout.Parse([]byte(`
name = "wide"

[[field]]
name = "id"
kind = "uint"
width = 64
`))
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}
	// Above 2^53, where float64 would lose bits.
	out, err := runPack(l, `{"id": 18446744073709551615}`, 0, 0)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if out != strings.Repeat("ff", 8) {
		t.Fatalf("hex output: %q", out)
	}
}

func TestRunPackRejectsOversizedRequests(t *testing.T) {
	l, err := layout.Parse([]byte(pairToml))
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}
	if _, err := runPack(l, `{"hi": 0, "lo": 0}`, ^uint(0)-3, 0); err == nil {
		t.Fatalf("expected error for offset near max uint")
	}
	if _, err := runPack(l, `{"hi": 0, "lo": 0}`, 0, maxPackBytes+1); err == nil {
		t.Fatalf("expected error for oversized buffer")
	}
}

func TestRunPackRejectsBadJSON(t *testing.T) {
	l, err := layout.Parse([]byte(pairToml))
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}
	if _, err := runPack(l, `{"hi": `, 0, 0); err == nil {
		t.Fatalf("expected JSON parse error")
	}
}
