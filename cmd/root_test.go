package cmd

import (
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "version flag", args: []string{"--version"}},
		{name: "help flag", args: []string{"--help"}},
		{name: "unknown command", args: []string{"nonexistent-command"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("rootCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := map[string]bool{"run": false, "sessions": false, "show": false, "export": false, "healthcheck": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%s command not registered", name)
		}
	}
}

func TestLoadConfig_DBFlagOverrides(t *testing.T) {
	env := newTestEnv(t)
	resetFlags()
	configPath = env.configPath
	dbPath = "/tmp/override.db"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Database != "/tmp/override.db" {
		t.Errorf("Database = %q, want flag value", cfg.Database)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	resetFlags()
	configPath = "/nonexistent/standup/config.yaml"
	if _, err := loadConfig(); err == nil || !strings.Contains(err.Error(), "config") {
		t.Errorf("loadConfig() error = %v, want read failure", err)
	}
}
