package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportCommand(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "2026-10-17")
	env.seed(t, "2026-10-18")

	tests := []struct {
		name      string
		args      []string
		wantFiles []string
		wantErr   bool
	}{
		{name: "invalid format", args: []string{"--format", "invalid"}, wantErr: true},
		{name: "single date markdown", args: []string{"--format", "md", "--date", "2026-10-18"}, wantFiles: []string{"standup_2026-10-18.md"}},
		{name: "all as json", args: []string{"--format", "json"}, wantFiles: []string{"standup_2026-10-17.json", "standup_2026-10-18.json"}},
		{name: "missing date", args: []string{"--date", "2026-01-01"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(env.dir, strings.ReplaceAll(tt.name, " ", "_"))
			args := append([]string{"export", "--config", env.configPath, "--out", out}, tt.args...)
			_, err := execute(t, args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("export error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, f := range tt.wantFiles {
				data, err := os.ReadFile(filepath.Join(out, f))
				if err != nil {
					t.Errorf("missing export %s: %v", f, err)
					continue
				}
				if !strings.Contains(string(data), "alice") {
					t.Errorf("%s does not mention alice", f)
				}
			}
		})
	}
}
