package signal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the signal-cli executable looked up in PATH.
const DefaultBinary = "signal-cli"

// runner executes binary with args and returns stdout and stderr.
type runner func(ctx context.Context, binary string, args ...string) (string, string, error)

func execRunner(ctx context.Context, binary string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Client sends Signal messages via signal-cli.
type Client struct {
	userID string // The phone number registered with signal-cli (e.g., "+15551234567")
	binary string
	run    runner
}

// Option configures a Client.
type Option func(*Client)

// WithBinary overrides the signal-cli executable path.
func WithBinary(path string) Option {
	return func(c *Client) { c.binary = path }
}

func withRunner(r runner) Option {
	return func(c *Client) { c.run = r }
}

// NewClient creates a new Signal client for the specified phone number.
// The phone number must be already registered with signal-cli.
func NewClient(userID string, opts ...Option) (*Client, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	if !strings.HasPrefix(userID, "+") {
		return nil, fmt.Errorf("userID must be a phone number starting with + (e.g., +15551234567)")
	}

	c := &Client{userID: userID, binary: DefaultBinary}
	for _, opt := range opts {
		opt(c)
	}
	if c.run == nil {
		if _, err := exec.LookPath(c.binary); err != nil {
			return nil, &SignalError{
				Op:     "initialize",
				UserID: userID,
				Err:    fmt.Errorf("%s not found in PATH. Please install signal-cli: https://github.com/AsamK/signal-cli", c.binary),
			}
		}
		c.run = execRunner
	}
	return c, nil
}

// SendMessage sends a text message to a Signal user
func (c *Client) SendMessage(ctx context.Context, recipient, message string) error {
	if recipient == "" {
		return c.fail("send", fmt.Errorf("recipient cannot be empty"))
	}
	if message == "" {
		return c.fail("send", fmt.Errorf("message cannot be empty"))
	}
	if !strings.HasPrefix(recipient, "+") {
		return c.fail("send", fmt.Errorf("recipient must be a phone number starting with + (e.g., +15551234567)"))
	}

	// signal-cli -u USER_ID send RECIPIENT -m MESSAGE
	_, stderr, err := c.run(ctx, c.binary, "-u", c.userID, "send", recipient, "-m", message)
	if err != nil {
		return c.fail("send", fmt.Errorf("failed to send message: %w (stderr: %s)", err, strings.TrimSpace(stderr)))
	}
	return nil
}

// SendGroupMessage sends a text message to the group with the given name.
func (c *Client) SendGroupMessage(ctx context.Context, groupName, message string) error {
	if groupName == "" {
		return c.fail("sendGroup", fmt.Errorf("groupName cannot be empty"))
	}
	if message == "" {
		return c.fail("sendGroup", fmt.Errorf("message cannot be empty"))
	}

	groups, err := c.ListGroups(ctx)
	if err != nil {
		return c.fail("sendGroup", err)
	}
	groupID := ""
	for _, g := range groups {
		if g.Name == groupName {
			groupID = g.ID
			break
		}
	}
	if groupID == "" {
		return c.fail("sendGroup", fmt.Errorf("group %q not found", groupName))
	}

	// signal-cli -u USER_ID send -g GROUP_ID -m MESSAGE
	_, stderr, err := c.run(ctx, c.binary, "-u", c.userID, "send", "-g", groupID, "-m", message)
	if err != nil {
		return c.fail("sendGroup", fmt.Errorf("failed to send group message: %w (stderr: %s)", err, strings.TrimSpace(stderr)))
	}
	return nil
}

// ListGroups returns the groups the user is a member of.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	stdout, stderr, err := c.run(ctx, c.binary, "-u", c.userID, "listGroups")
	if err != nil {
		return nil, c.fail("listGroups", fmt.Errorf("failed to list groups: %w (stderr: %s)", err, strings.TrimSpace(stderr)))
	}
	return parseGroups(stdout), nil
}

// parseGroups reads signal-cli listGroups output. Each group is either one
// line ("Id: X Name: Y  Active: true ...") or an "Id:" line followed by a
// "Name:" line.
func parseGroups(out string) []Group {
	var groups []Group
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Id: "):
			rest := strings.TrimPrefix(line, "Id: ")
			id, tail, _ := strings.Cut(rest, " ")
			g := Group{ID: id}
			if _, name, ok := strings.Cut(tail, "Name: "); ok {
				g.Name = trimField(name)
			}
			groups = append(groups, g)
		case strings.HasPrefix(line, "Name: ") && len(groups) > 0 && groups[len(groups)-1].Name == "":
			groups[len(groups)-1].Name = trimField(strings.TrimPrefix(line, "Name: "))
		}
	}
	return groups
}

// trimField cuts a value at the next "  Key:" column signal-cli appends.
func trimField(s string) string {
	if i := strings.Index(s, "  "); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func (c *Client) fail(op string, err error) error {
	return &SignalError{Op: op, UserID: c.userID, Err: err}
}
