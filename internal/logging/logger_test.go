package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]logrus.Level{
		"":        logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"  info ": logrus.InfoLevel,
	}
	for in, want := range cases {
		logger, err := New(strings.TrimSpace(in))
		if err != nil {
			t.Fatalf("New(%q) failed: %v", in, err)
		}
		if logger.GetLevel() != want {
			t.Errorf("New(%q): expected %s, got %s", in, want, logger.GetLevel())
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestNewWithOutput_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput("info", &buf)
	if err != nil {
		t.Fatal(err)
	}

	logger.WithField("source", "cninfo").Info("Item decided")
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "source=cninfo") || !strings.Contains(out, "Item decided") {
		t.Errorf("Expected structured fields in output, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("Expected debug entries to be dropped at info level")
	}
}
