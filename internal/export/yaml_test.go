package export

import (
	"bytes"
	"testing"

	"github.com/iksnae/standup-bot/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(internal.CreateTestReport("2026-10-18"), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got struct {
		Session struct {
			Date string `yaml:"date"`
		} `yaml:"session"`
		Records []struct {
			DisplayName string   `yaml:"display_name"`
			Status      string   `yaml:"status"`
			Answers     []string `yaml:"answers"`
		} `yaml:"records"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if got.Session.Date != "2026-10-18" || len(got.Records) != 3 {
		t.Fatalf("decoded = %+v", got)
	}
	if got.Records[1].DisplayName != "bob" || got.Records[1].Status != "skipped" || len(got.Records[1].Answers) != 1 {
		t.Errorf("bob = %+v", got.Records[1])
	}
}
