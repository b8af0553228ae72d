package cmd

import (
	"strings"
	"testing"
)

func TestSessionsCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "sessions", "--config", env.configPath)
	if err != nil {
		t.Fatalf("sessions error = %v", err)
	}
	if !strings.Contains(out, "No standups yet") {
		t.Errorf("empty output = %q", out)
	}

	env.seed(t, "2026-10-17")
	env.seed(t, "2026-10-18")
	out, err = execute(t, "sessions", "--config", env.configPath, "--limit", "1")
	if err != nil {
		t.Fatalf("sessions error = %v", err)
	}
	if !strings.Contains(out, "2026-10-18") || strings.Contains(out, "2026-10-17") {
		t.Errorf("output = %q, want only the latest standup", out)
	}
}
