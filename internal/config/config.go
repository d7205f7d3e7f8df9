package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/teemow/invitebooker/internal/slots"
	"github.com/teemow/invitebooker/internal/store"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// StoreConfig selects the dedupe and checkpoint backend.
type StoreConfig struct {
	// Driver is one of memory, file, sqlite or valkey.
	Driver string `yaml:"driver"`
	// DSN is a path for file and sqlite, host:port for valkey.
	DSN string `yaml:"dsn,omitempty"`
}

// SignalConfig sends booking summaries through signal-cli.
type SignalConfig struct {
	Enabled bool `yaml:"enabled"`
	// Account is the phone number registered with signal-cli.
	Account string `yaml:"account,omitempty"`
	// Recipient is a phone number. Group is used instead when set.
	Recipient string `yaml:"recipient,omitempty"`
	Group     string `yaml:"group,omitempty"`
}

type NotifyConfig struct {
	Signal SignalConfig `yaml:"signal"`
}

// Config is the top-level configuration.
type Config struct {
	// Timezone is the IANA zone bookings and work hours are expressed in.
	Timezone string `yaml:"timezone"`

	WorkStart string `yaml:"work_start"`
	WorkEnd   string `yaml:"work_end"`

	DefaultDurationMinutes int `yaml:"default_duration_minutes"`
	BufferMinutes          int `yaml:"buffer_minutes"`
	StepMinutes            int `yaml:"step_minutes"`

	RescheduleDaysAhead int `yaml:"reschedule_days_ahead"`
	RescheduleLimit     int `yaml:"reschedule_limit"`

	// LookbackDays and LookaheadDays bound the busy-time window.
	LookbackDays  int `yaml:"lookback_days"`
	LookaheadDays int `yaml:"lookahead_days"`

	MailQuery   string `yaml:"mail_query,omitempty"`
	MaxMessages int    `yaml:"max_messages"`

	// Poll is a cron spec such as "*/5 * * * *" or "@every 1m".
	Poll string `yaml:"poll"`

	// Conference attaches a video conference to created events.
	Conference bool `yaml:"conference"`

	// Account names the Google token to use and namespaces checkpoints.
	Account string `yaml:"account"`

	Store  StoreConfig  `yaml:"store"`
	Notify NotifyConfig `yaml:"notify"`
}

// Defaults.
const (
	DefaultTimezone        = "Asia/Kolkata"
	DefaultWorkStart       = "10:00"
	DefaultWorkEnd         = "18:00"
	DefaultDurationMinutes = 30
	DefaultBufferMinutes   = 10
	DefaultPoll            = "@every 1m"
	DefaultAccount         = "default"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	c := &Config{Conference: true, BufferMinutes: DefaultBufferMinutes}
	c.Normalize()
	return c
}

// Normalize fills zero values with defaults. A zero buffer is valid and is
// kept; negative buffers are left for Validate to reject.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.WorkStart == "" {
		c.WorkStart = DefaultWorkStart
	}
	if c.WorkEnd == "" {
		c.WorkEnd = DefaultWorkEnd
	}
	if c.DefaultDurationMinutes == 0 {
		c.DefaultDurationMinutes = DefaultDurationMinutes
	}
	if c.StepMinutes == 0 {
		c.StepMinutes = int(slots.DefaultStep / time.Minute)
	}
	if c.RescheduleDaysAhead == 0 {
		c.RescheduleDaysAhead = 7
	}
	if c.RescheduleLimit == 0 {
		c.RescheduleLimit = 3
	}
	if c.LookbackDays == 0 {
		c.LookbackDays = 1
	}
	if c.LookaheadDays == 0 {
		c.LookaheadDays = 30
	}
	if c.MaxMessages == 0 {
		c.MaxMessages = 10
	}
	if c.Poll == "" {
		c.Poll = DefaultPoll
	}
	if c.Account == "" {
		c.Account = DefaultAccount
	}
	if c.Store.Driver == "" {
		c.Store.Driver = store.DriverMemory
	}
}

// ApplyEnv overrides fields from the environment. Unparseable numbers are
// ignored.
func (c *Config) ApplyEnv() {
	c.Timezone = getEnvOrDefault("USER_DEFAULT_TZ", c.Timezone)
	c.WorkStart = getEnvOrDefault("WORK_START_LOCAL", c.WorkStart)
	c.WorkEnd = getEnvOrDefault("WORK_END_LOCAL", c.WorkEnd)
	c.DefaultDurationMinutes = getEnvIntOrDefault("DEFAULT_DURATION_MIN", c.DefaultDurationMinutes)
	c.BufferMinutes = getEnvIntOrDefault("BUFFER_MIN", c.BufferMinutes)
	c.Poll = getEnvOrDefault("INVITEBOOKER_POLL", c.Poll)

	if v := os.Getenv("INVITEBOOKER_STORE"); v != "" {
		driver, dsn, _ := strings.Cut(v, ":")
		c.Store = StoreConfig{Driver: driver, DSN: dsn}
	}
}

// Validate reports every problem at once. The returned error wraps
// ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		bad("unknown timezone %q", c.Timezone)
	}
	start, serr := slots.ParseClock(c.WorkStart)
	if serr != nil {
		bad("work_start: %v", serr)
	}
	end, eerr := slots.ParseClock(c.WorkEnd)
	if eerr != nil {
		bad("work_end: %v", eerr)
	}
	if serr == nil && eerr == nil && end.Minutes() <= start.Minutes() {
		bad("work_end %s must be after work_start %s", c.WorkEnd, c.WorkStart)
	}

	for _, f := range []struct {
		name string
		v    int
	}{
		{"default_duration_minutes", c.DefaultDurationMinutes},
		{"step_minutes", c.StepMinutes},
		{"reschedule_days_ahead", c.RescheduleDaysAhead},
		{"reschedule_limit", c.RescheduleLimit},
		{"lookback_days", c.LookbackDays},
		{"lookahead_days", c.LookaheadDays},
		{"max_messages", c.MaxMessages},
	} {
		if f.v <= 0 {
			bad("%s must be positive, got %d", f.name, f.v)
		}
	}
	if c.BufferMinutes < 0 {
		bad("buffer_minutes must not be negative, got %d", c.BufferMinutes)
	}

	if _, err := cron.ParseStandard(c.Poll); err != nil {
		bad("poll %q: %v", c.Poll, err)
	}

	if !slices.Contains(store.Drivers(), c.Store.Driver) {
		bad("unknown store driver %q", c.Store.Driver)
	} else if c.Store.Driver != store.DriverMemory && c.Store.DSN == "" {
		bad("store driver %s needs a dsn", c.Store.Driver)
	}

	if s := c.Notify.Signal; s.Enabled {
		if s.Account == "" {
			bad("notify.signal.account is required when signal is enabled")
		}
		if s.Recipient == "" && s.Group == "" {
			bad("notify.signal needs a recipient or a group")
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Location returns the configured zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// WorkHours returns the parsed work window.
func (c *Config) WorkHours() (slots.Clock, slots.Clock, error) {
	start, err := slots.ParseClock(c.WorkStart)
	if err != nil {
		return slots.Clock{}, slots.Clock{}, err
	}
	end, err := slots.ParseClock(c.WorkEnd)
	if err != nil {
		return slots.Clock{}, slots.Clock{}, err
	}
	return start, end, nil
}

// Schedule parses Poll.
func (c *Config) Schedule() (cron.Schedule, error) {
	return cron.ParseStandard(c.Poll)
}

func (c *Config) Buffer() time.Duration {
	return time.Duration(c.BufferMinutes) * time.Minute
}

func (c *Config) Step() time.Duration {
	return time.Duration(c.StepMinutes) * time.Minute
}

func (c *Config) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

func (c *Config) Lookahead() time.Duration {
	return time.Duration(c.LookaheadDays) * 24 * time.Hour
}

// Load reads the YAML file at path, creating it with defaults if it does
// not exist, then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		// Keys missing from the file keep their defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.Normalize()
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path atomically with mode 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".invitebooker-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// DefaultPath returns $XDG_CONFIG_HOME/invitebooker/config.yaml, or the
// equivalent under the home directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "invitebooker.yaml")
	}
	return filepath.Join(dir, "invitebooker", "config.yaml")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
