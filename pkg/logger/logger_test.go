package logger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/William2207/uteshop/cli/pkg/config"
	"github.com/charmbracelet/log"
)

func TestLoggerFunctions_NoNilPointers(t *testing.T) {
	logger = nil
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logger function panicked: %v", r)
		}
	}()

	Debug("test debug", "key", "value")
	Info("test info", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")
	With("cart").Info("discarded")
}

func TestSetOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, log.InfoLevel)

	Debug("hidden message")
	Info("cart synced", "total_items", 3)

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("Debug output should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "cart synced") || !strings.Contains(out, "total_items=3") {
		t.Errorf("Expected info line with key/value, got %q", out)
	}
}

func TestWithAddsPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, log.DebugLevel)

	With("gateway").Debug("request sent")

	if !strings.Contains(buf.String(), "gateway") {
		t.Errorf("Expected component prefix in %q", buf.String())
	}
}

func TestInitVerboseWritesToLogFile(t *testing.T) {
	dir := t.TempDir()
	if err := config.Init(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("config init: %v", err)
	}

	Init(true)
	if GetLogger() == nil {
		t.Fatal("Init should create a logger")
	}
	if GetLogger().GetLevel() != log.DebugLevel {
		t.Errorf("Expected debug level, got %v", GetLogger().GetLevel())
	}
}
