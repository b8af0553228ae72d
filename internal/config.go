package internal

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTransport          = "console"
	DefaultBotUsername        = "standup-bot"
	DefaultSchedule           = "0 9 * * 1-5"
	DefaultRollupDelayMinutes = 30
	DefaultPacingDelay        = time.Second
	DefaultOperationTimeout   = 10 * time.Second
)

// DefaultQuestions is used when the config file lists none.
var DefaultQuestions = []string{
	"What did you accomplish yesterday?",
	"What will you do today?",
	"Is anything blocking your progress?",
}

// Config is the immutable runtime configuration, loaded once at startup.
type Config struct {
	BotUsername        string        `yaml:"bot_username"`
	Transport          string        `yaml:"transport"`
	Channel            string        `yaml:"channel"`
	Participants       []string      `yaml:"participants"`
	Questions          []string      `yaml:"questions"`
	Schedule           string        `yaml:"schedule"`
	RollupDelayMinutes int           `yaml:"rollup_delay_minutes"`
	PacingDelay        time.Duration `yaml:"pacing_delay"`
	OperationTimeout   time.Duration `yaml:"operation_timeout"`
	Timezone           string        `yaml:"timezone"`
	Database           string        `yaml:"database"`

	location *time.Location
}

// LoadConfig reads, normalises and validates the YAML config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML payload into a validated Config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.BotUsername = strings.TrimSpace(c.BotUsername)
	if c.BotUsername == "" {
		c.BotUsername = DefaultBotUsername
	}
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport == "" {
		c.Transport = DefaultTransport
	}
	c.Channel = strings.TrimPrefix(strings.TrimSpace(c.Channel), "#")
	c.Participants = normalizeList(c.Participants, "@")
	c.Questions = normalizeList(c.Questions, "")
	if len(c.Questions) == 0 {
		c.Questions = cloneStrings(DefaultQuestions)
	}
	c.Schedule = strings.TrimSpace(c.Schedule)
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.RollupDelayMinutes == 0 {
		c.RollupDelayMinutes = DefaultRollupDelayMinutes
	}
	if c.PacingDelay == 0 {
		c.PacingDelay = DefaultPacingDelay
	}
	if c.OperationTimeout == 0 {
		c.OperationTimeout = DefaultOperationTimeout
	}
	if env := os.Getenv("STANDUP_DB"); env != "" {
		c.Database = env
	}
	c.Database = strings.TrimSpace(c.Database)
}

func normalizeList(values []string, trimPrefix string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if trimPrefix != "" {
			v = strings.TrimPrefix(v, trimPrefix)
		}
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Validate checks required fields and parses the schedule and timezone.
func (c *Config) Validate() error {
	if c.Transport != DefaultTransport {
		return &ConfigError{Field: "transport", Err: fmt.Errorf("unsupported transport %q", c.Transport)}
	}
	if c.Channel == "" {
		return &ConfigError{Field: "channel", Err: errors.New("must not be empty")}
	}
	if len(c.Participants) == 0 {
		return &ConfigError{Field: "participants", Err: errors.New("at least one participant is required")}
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return &ConfigError{Field: "schedule", Err: err}
	}
	if c.RollupDelayMinutes < 0 {
		return &ConfigError{Field: "rollup_delay_minutes", Err: errors.New("must be positive")}
	}
	if c.PacingDelay < 0 {
		return &ConfigError{Field: "pacing_delay", Err: errors.New("must not be negative")}
	}
	if c.OperationTimeout < 0 {
		return &ConfigError{Field: "operation_timeout", Err: errors.New("must not be negative")}
	}
	loc := time.Local
	if c.Timezone != "" {
		l, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return &ConfigError{Field: "timezone", Err: err}
		}
		loc = l
	}
	c.location = loc
	return nil
}

// RollupDelay is the response window measured from session creation.
func (c *Config) RollupDelay() time.Duration {
	return time.Duration(c.RollupDelayMinutes) * time.Minute
}

// Location is the timezone used to compute session dates.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// DatabasePath returns the configured database path or the per-user default.
func (c *Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	paths, err := DetectPaths()
	if err != nil {
		return "", err
	}
	return paths.DatabaseFile(), nil
}

// QuestionSnapshot returns a fresh copy of the question list for a new record.
func (c *Config) QuestionSnapshot() []string {
	return cloneStrings(c.Questions)
}
