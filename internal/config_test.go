package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/standup-bot/testutil"
)

func TestParseConfig_Defaults(t *testing.T) {
	t.Setenv("STANDUP_DB", "")
	cfg, err := ParseConfig([]byte("channel: '#standup'\nparticipants: ['@alice', bob, bob, '  ']\n"))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.Channel != "standup" {
		t.Errorf("Channel = %q, want standup", cfg.Channel)
	}
	if len(cfg.Participants) != 2 || cfg.Participants[0] != "alice" || cfg.Participants[1] != "bob" {
		t.Errorf("Participants = %v, want [alice bob]", cfg.Participants)
	}
	if len(cfg.Questions) != len(DefaultQuestions) {
		t.Errorf("Questions = %v, want defaults", cfg.Questions)
	}
	if cfg.Transport != DefaultTransport || cfg.BotUsername != DefaultBotUsername {
		t.Errorf("Transport/BotUsername = %q/%q", cfg.Transport, cfg.BotUsername)
	}
	if cfg.Schedule != DefaultSchedule {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
	if cfg.RollupDelay() != 30*time.Minute {
		t.Errorf("RollupDelay() = %v", cfg.RollupDelay())
	}
	if cfg.PacingDelay != DefaultPacingDelay || cfg.OperationTimeout != DefaultOperationTimeout {
		t.Errorf("PacingDelay/OperationTimeout = %v/%v", cfg.PacingDelay, cfg.OperationTimeout)
	}
	if cfg.Location() != time.Local {
		t.Errorf("Location() = %v, want Local", cfg.Location())
	}
}

func TestParseConfig_Full(t *testing.T) {
	t.Setenv("STANDUP_DB", "")
	data := []byte(`
bot_username: daily-bot
transport: Console
channel: eng
participants: [alice, bob]
questions: [Q1, Q2]
schedule: "@daily"
rollup_delay_minutes: 45
pacing_delay: 250ms
operation_timeout: 3s
timezone: UTC
database: /tmp/standup.db
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.BotUsername != "daily-bot" || cfg.Transport != "console" {
		t.Errorf("BotUsername/Transport = %q/%q", cfg.BotUsername, cfg.Transport)
	}
	if cfg.PacingDelay != 250*time.Millisecond || cfg.OperationTimeout != 3*time.Second {
		t.Errorf("PacingDelay/OperationTimeout = %v/%v", cfg.PacingDelay, cfg.OperationTimeout)
	}
	if cfg.RollupDelay() != 45*time.Minute {
		t.Errorf("RollupDelay() = %v", cfg.RollupDelay())
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.Location())
	}
	path, err := cfg.DatabasePath()
	if err != nil || path != "/tmp/standup.db" {
		t.Errorf("DatabasePath() = %q, %v", path, err)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantField string
	}{
		{name: "missing channel", data: "participants: [alice]", wantField: "channel"},
		{name: "missing participants", data: "channel: eng", wantField: "participants"},
		{name: "bad schedule", data: "channel: eng\nparticipants: [a]\nschedule: 'every day'", wantField: "schedule"},
		{name: "bad timezone", data: "channel: eng\nparticipants: [a]\ntimezone: Mars/Olympus", wantField: "timezone"},
		{name: "negative delay", data: "channel: eng\nparticipants: [a]\nrollup_delay_minutes: -1", wantField: "rollup_delay_minutes"},
		{name: "unknown transport", data: "channel: eng\nparticipants: [a]\ntransport: carrier-pigeon", wantField: "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("ParseConfig() error = %v, want ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestParseConfig_UnknownField(t *testing.T) {
	if _, err := ParseConfig([]byte("channel: eng\nparticipants: [a]\nchanel: typo\n")); err == nil {
		t.Error("ParseConfig() should reject unknown fields")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("STANDUP_DB", "/override/standup.db")
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("channel: eng\nparticipants: [alice]\ndatabase: /ignored.db\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Database != "/override/standup.db" {
		t.Errorf("STANDUP_DB should override database, got %q", cfg.Database)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadConfig() should fail for a missing file")
	}
}

func TestConfig_QuestionSnapshot(t *testing.T) {
	cfg := &Config{Questions: []string{"Q1", "Q2"}}
	snap := cfg.QuestionSnapshot()
	snap[0] = "changed"
	if cfg.Questions[0] != "Q1" {
		t.Error("QuestionSnapshot() must return an independent copy")
	}
}
