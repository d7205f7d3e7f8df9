package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/invitebooker/internal/slots"
)

func newSlotsCmd() *cobra.Command {
	var (
		busy     []string
		duration int
		days     int
		limit    int
		now      string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Propose free slots around the given busy intervals",
		Long: `Propose free weekday slots within work hours, starting tomorrow, that keep
the configured buffer from every busy interval. Busy intervals are given as
start/end pairs in ISO 8601; times without an offset use the configured
timezone.`,
		Example: `  invitebooker slots --busy 2025-03-11T10:00/2025-03-11T12:00 --duration 45 --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			intervals, err := parseBusyFlags(busy, s.loc)
			if err != nil {
				return err
			}

			ref := time.Now().In(s.loc)
			if now != "" {
				if ref, err = slots.ParseTimestamp(now, s.loc); err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
			}

			opts := s.slotOptions()
			if cmd.Flags().Changed("duration") {
				opts.Duration = time.Duration(duration) * time.Minute
			}
			if cmd.Flags().Changed("days") {
				opts.DaysAhead = days
			}
			if cmd.Flags().Changed("limit") {
				opts.Limit = limit
			}
			if opts.Duration <= 0 || opts.DaysAhead < 1 || opts.Limit < 1 {
				return fmt.Errorf("--duration, --days and --limit must be positive")
			}

			found := slots.Suggest(intervals, ref, opts)
			if asJSON {
				return printJSON(found)
			}
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "No free slots found.")
				return nil
			}
			for _, slot := range found {
				fmt.Fprintln(out, slots.HumanSlot(slot, s.cfg.Timezone))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&busy, "busy", nil, "Busy interval as start/end (repeatable)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Slot length in minutes (default: default_duration_minutes)")
	cmd.Flags().IntVar(&days, "days", 0, "Days to search after today (default: reschedule_days_ahead)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of slots (default: reschedule_limit)")
	cmd.Flags().StringVar(&now, "now", "", "Reference time, ISO 8601 (default: current time)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print slots as JSON")

	return cmd
}
