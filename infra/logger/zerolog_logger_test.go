package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONOutputCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	log := newZerologLogger("episode", &buf, "production")

	log.Infof("reset with seed %d", 42)
	log.Debugw("step", map[string]any{"step": 3, "reward": -12.5})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count %d, want 2", len(lines))
	}
	for i, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("line %d is not JSON: %v", i, err)
		}
		if rec["component"] != "episode" {
			t.Errorf("line %d: component %v, want episode", i, rec["component"])
		}
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["step"] != float64(3) || rec["reward"] != -12.5 {
		t.Errorf("structured fields lost: %v", rec)
	}
}

func TestDevOutputIsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	log := newZerologLogger("service", &buf, "dev")
	log.Warnf("falling back to nop sink")
	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("dev output should not be JSON: %q", out)
	}
	if !strings.Contains(out, "falling back to nop sink") {
		t.Fatalf("message missing from output: %q", out)
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	var log Logger = NopLogger{}
	log.Debugf("ignored %d", 1)
	log.Debugw("ignored", map[string]any{"k": "v"})
	log.Infof("ignored")
	log.Warnf("ignored")
	log.Errorf("ignored")
}
