package cmd

import (
	"strings"
	"testing"
)

func TestHealthcheckCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "healthcheck", "--config", env.configPath, "--details")
	if err != nil {
		t.Fatalf("healthcheck error = %v\n%s", err, out)
	}
	for _, want := range []string{"Config is valid", "Next standup at", "Database is readable", "2 of 2 participant(s)", "@alice", "Health check passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHealthcheckCommand_BadConfig(t *testing.T) {
	resetFlags()
	_, err := execute(t, "healthcheck", "--config", "/nonexistent/config.yaml")
	if err == nil {
		t.Error("healthcheck with missing config should fail")
	}
}
