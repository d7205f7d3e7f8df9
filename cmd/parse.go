package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/invitebooker/internal/invite"
	"github.com/teemow/invitebooker/internal/slots"
)

func newParseCmd() *cobra.Command {
	var (
		subject  string
		body     string
		bodyFile string
		headers  []string
		now      string
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse an invitation and print what would be booked",
		Long: `Parse an invitation email and print the extracted title, time window,
duration and attendees as JSON. Nothing is read from Gmail or written to
the calendar.

Use --body-file - to read the body from stdin.`,
		Example: `  invitebooker parse --subject "Sync" --body "Let's meet on 2025-03-10 at 14:00 for 45 minutes" \
    --header "To: ann@example.com" --header "Cc: bob@example.com"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bodyFile != "" {
				data, err := readBody(cmd.InOrStdin(), bodyFile)
				if err != nil {
					return err
				}
				body = data
			}
			hdrs, err := parseHeaderFlags(headers)
			if err != nil {
				return err
			}

			s, err := loadSettings()
			if err != nil {
				return err
			}
			clock := time.Now
			if now != "" {
				t, err := slots.ParseTimestamp(now, s.loc)
				if err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
				clock = func() time.Time { return t }
			}

			inv := s.parser(clock).Parse(invite.Message{Subject: subject, Body: body, Headers: hdrs})
			return printJSON(inv)
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&body, "body", "", "Email body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the body from a file, or - for stdin")
	cmd.Flags().StringArrayVar(&headers, "header", nil, `Header as "Name: value" (repeatable)`)
	cmd.Flags().StringVar(&now, "now", "", "Reference time for relative phrases, ISO 8601")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func readBody(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(data), nil
}
