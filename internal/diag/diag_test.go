package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLinesCarryPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Infof("listening on %s", ":7890")
	l.Warnf("retrying %d", 3)
	l.Errorf("fatal: %v", "boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "INFO: listening on :7890") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "WARN: retrying 3") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "ERROR: fatal: boom") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics()
	m.Inc("connections_accepted", 1)
	m.Inc("connections_accepted", 2)
	m.Inc("connections_dropped", 1)

	snap := m.Snapshot()
	if snap["connections_accepted"] != 3 {
		t.Errorf("connections_accepted = %d, want 3", snap["connections_accepted"])
	}
	if snap["connections_dropped"] != 1 {
		t.Errorf("connections_dropped = %d, want 1", snap["connections_dropped"])
	}

	snap["connections_accepted"] = 99
	if m.Snapshot()["connections_accepted"] != 3 {
		t.Error("Snapshot must return a copy, not a live view")
	}
}
