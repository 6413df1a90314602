package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{"nonsense", logrus.InfoLevel},
	}
	for _, tt := range tests {
		if got := Setup(Options{Level: tt.in}).GetLevel(); got != tt.want {
			t.Errorf("Setup(%q) level = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(Options{JSON: true, Out: &buf})
	log.WithField("day", "2025-04-15").Info("recomputed")

	out := buf.String()
	if !strings.Contains(out, `"msg":"recomputed"`) || !strings.Contains(out, `"day":"2025-04-15"`) {
		t.Errorf("JSON output = %q, missing fields", out)
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("should not panic or print")
	if log.GetLevel() != logrus.PanicLevel {
		t.Errorf("Discard level = %v, want panic", log.GetLevel())
	}
}
