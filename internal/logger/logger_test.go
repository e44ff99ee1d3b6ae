package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, true)

	log.Debug().Msg("resolver picked a column")
	if !strings.Contains(buf.String(), "resolver picked a column") {
		t.Errorf("debug output missing; got %q", buf.String())
	}
}

func TestDefaultSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, false)

	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug output leaked at info level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("info output missing: %q", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, false)

	ctx := WithContext(context.Background(), log)
	ctxLog := FromContext(ctx)
	ctxLog.Info().Msg("through the context")

	if !strings.Contains(buf.String(), "through the context") {
		t.Errorf("context logger output missing; got %q", buf.String())
	}
}

func TestFromContextDefaultsToNop(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("GetLevel() = %v; want disabled no-op logger", log.GetLevel())
	}
}
