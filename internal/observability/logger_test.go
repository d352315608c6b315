package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitLoggerStampsAppName(t *testing.T) {
	prev := log.Logger
	defer func() { log.Logger = prev }()

	var out bytes.Buffer
	log.Logger = zerolog.New(&out)

	logger := InitLogger("packd_test")
	logger.Info().Msg("ready")

	if !strings.Contains(out.String(), `"app":"packd_test"`) {
		t.Fatalf("log line missing app field: %s", out.String())
	}

	// The global logger carries the stamp too.
	out.Reset()
	log.Info().Msg("global")
	if !strings.Contains(out.String(), `"app":"packd_test"`) {
		t.Fatalf("global logger missing app field: %s", out.String())
	}
}
