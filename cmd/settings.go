package cmd

import (
	"fmt"
	"time"

	"github.com/teemow/invitebooker/internal/config"
	"github.com/teemow/invitebooker/internal/invite"
	"github.com/teemow/invitebooker/internal/slots"
)

// settings is the parsed form of the configuration shared by all commands.
type settings struct {
	cfg       *config.Config
	loc       *time.Location
	workStart slots.Clock
	workEnd   slots.Clock
}

func loadSettings() (*settings, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return newSettings(cfg)
}

func newSettings(cfg *config.Config) (*settings, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	start, end, err := cfg.WorkHours()
	if err != nil {
		return nil, fmt.Errorf("invalid work hours: %w", err)
	}
	return &settings{cfg: cfg, loc: loc, workStart: start, workEnd: end}, nil
}

func (s *settings) parser(now func() time.Time) *invite.Parser {
	return invite.NewParser(invite.Config{
		Location:               s.loc,
		DefaultDurationMinutes: s.cfg.DefaultDurationMinutes,
		WorkStart:              s.workStart,
		Resolver:               invite.NewWhenResolver(),
		Now:                    now,
	})
}

// slotOptions returns the search options used for proposals outside a
// conflict, with the configured default duration.
func (s *settings) slotOptions() slots.Options {
	return slots.Options{
		WorkStart: s.workStart,
		WorkEnd:   s.workEnd,
		Duration:  time.Duration(s.cfg.DefaultDurationMinutes) * time.Minute,
		Buffer:    s.cfg.Buffer(),
		Step:      s.cfg.Step(),
		DaysAhead: s.cfg.RescheduleDaysAhead,
		Limit:     s.cfg.RescheduleLimit,
	}
}
