package scheduling_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/invitebooker/internal/instrumentation"
	"github.com/teemow/invitebooker/internal/invite"
	"github.com/teemow/invitebooker/internal/scheduler"
	"github.com/teemow/invitebooker/internal/slots"
	"github.com/teemow/invitebooker/internal/tools/batch"
	"github.com/teemow/invitebooker/internal/tools/common"
)

// Processor runs the booking flow for one message.
type Processor interface {
	Process(ctx context.Context, messageID string) scheduler.Result
}

// Deps carries what the tools need from the rest of the program.
type Deps struct {
	Parser   *invite.Parser
	Location *time.Location
	// Slots holds work hours, buffer, step and the default duration, days
	// ahead and limit for suggest_slots.
	Slots slots.Options
	// Processor enables process_message when set.
	Processor Processor

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

type handlers struct {
	Deps
}

func newHandlers(d Deps) (*handlers, error) {
	if d.Parser == nil {
		return nil, errors.New("invite parser is required")
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &handlers{Deps: d}, nil
}

// RegisterSchedulingTools registers the scheduling tools with the MCP server.
func RegisterSchedulingTools(s *mcpserver.MCPServer, d Deps) error {
	h, err := newHandlers(d)
	if err != nil {
		return err
	}
	wrap := func(name string, fn common.ToolHandler) common.ToolHandler {
		return common.InstrumentedToolHandler(name, h.Metrics, h.Logger, fn)
	}

	parseTool := mcp.NewTool("parse_invite",
		mcp.WithDescription("Extract a meeting title, time window, duration and attendees from an invitation email"),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Description("Email body, plain text or HTML"),
		),
		mcp.WithString("headers_json",
			mcp.Description(`Email headers as a JSON object, e.g. {"To": "a@example.com", "Cc": "b@example.com"}`),
		),
	)
	s.AddTool(parseTool, wrap("parse_invite", h.handleParseInvite))

	conflictTool := mcp.NewTool("check_conflict",
		mcp.WithDescription("Check whether a time window overlaps any busy interval. Touching intervals do not conflict."),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Window start, ISO 8601. Without an offset it is read in the configured timezone."),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Window end, ISO 8601"),
		),
		mcp.WithString("busy_json",
			mcp.Description("JSON array of busy intervals or calendar events"),
		),
	)
	s.AddTool(conflictTool, wrap("check_conflict", h.handleCheckConflict))

	suggestTool := mcp.NewTool("suggest_slots",
		mcp.WithDescription("Propose free weekday slots within work hours, starting tomorrow"),
		mcp.WithString("busy_json",
			mcp.Description("JSON array of busy intervals or calendar events"),
		),
		mcp.WithString("now",
			mcp.Description("Reference time, ISO 8601 (default: current time)"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description(fmt.Sprintf("Slot length in minutes (default: %d)", int(d.Slots.Duration/time.Minute))),
		),
		mcp.WithNumber("days_ahead",
			mcp.Description(fmt.Sprintf("Days to search after today (default: %d)", d.Slots.DaysAhead)),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of slots (default: %d)", d.Slots.Limit)),
		),
	)
	s.AddTool(suggestTool, wrap("suggest_slots", h.handleSuggestSlots))

	if h.Processor != nil {
		processTool := mcp.NewTool("process_message",
			mcp.WithDescription("Parse a Gmail message and book it on the calendar, rescheduling on conflict. Creates events and emails attendees."),
			mcp.WithString("message_id",
				mcp.Required(),
				mcp.Description("Gmail message ID"),
			),
		)
		s.AddTool(processTool, wrap("process_message", h.handleProcessMessage))

		processManyTool := mcp.NewTool("process_messages",
			mcp.WithDescription("Run process_message for several Gmail messages in order. A failure does not stop the rest."),
			mcp.WithString("message_ids",
				mcp.Required(),
				mcp.Description("Message ID (string), comma-separated IDs or array of message IDs"),
			),
		)
		s.AddTool(processManyTool, wrap("process_messages", h.handleProcessMessages))
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *handlers) handleParseInvite(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	subject := common.StringArg(args, "subject")
	if subject == "" {
		return mcp.NewToolResultError("subject is required"), nil
	}

	headers := map[string]string{}
	if raw := common.StringArg(args, "headers_json"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &headers); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("headers_json must be a JSON object of strings: %v", err)), nil
		}
	}

	body, _ := args["body"].(string)
	inv := h.Parser.Parse(invite.Message{Subject: subject, Body: body, Headers: headers})
	return jsonResult(inv)
}

type conflictResult struct {
	Conflict bool            `json:"conflict"`
	Window   slots.Interval  `json:"window"`
	With     *slots.Interval `json:"with,omitempty"`
}

func (h *handlers) handleCheckConflict(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	start, end := common.StringArg(args, "start"), common.StringArg(args, "end")
	if start == "" || end == "" {
		return mcp.NewToolResultError("start and end are required"), nil
	}
	window, err := parseWindow(start, end, h.Location)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid window: %v", err)), nil
	}
	busy, err := parseBusy(common.StringArg(args, "busy_json"), h.Location)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := conflictResult{Window: window}
	if hit, ok := slots.FirstConflict(window, busy); ok {
		res.Conflict = true
		res.With = &hit
	}
	return jsonResult(res)
}

type slotJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

type suggestResult struct {
	Slots    []slotJSON `json:"slots"`
	Examined int        `json:"examined"`
}

func (h *handlers) handleSuggestSlots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	now := h.Now().In(h.Location)
	if raw := common.StringArg(args, "now"); raw != "" {
		t, err := slots.ParseTimestamp(raw, h.Location)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid now: %v", err)), nil
		}
		now = t
	}

	opts := h.Slots
	duration, err := common.IntArg(args, "duration_minutes", int(opts.Duration/time.Minute))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if opts.DaysAhead, err = common.IntArg(args, "days_ahead", opts.DaysAhead); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if opts.Limit, err = common.IntArg(args, "limit", opts.Limit); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if duration < 1 || opts.DaysAhead < 1 || opts.Limit < 1 {
		return mcp.NewToolResultError("duration_minutes, days_ahead and limit must be positive"), nil
	}
	opts.Duration = time.Duration(duration) * time.Minute

	busy, err := parseBusy(common.StringArg(args, "busy_json"), h.Location)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	search := slots.Search(busy, now, opts)
	h.Metrics.RecordSlotSearch(ctx, search.Examined, len(search.Slots))

	out := suggestResult{Slots: []slotJSON{}, Examined: search.Examined}
	for _, s := range search.Slots {
		out.Slots = append(out.Slots, slotJSON{
			Start: slots.FormatISO(s.Start),
			End:   slots.FormatISO(s.End),
			Label: slots.HumanSlot(s, h.Location.String()),
		})
	}
	return jsonResult(out)
}

func (h *handlers) handleProcessMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := common.StringArg(request.GetArguments(), "message_id")
	if id == "" {
		return mcp.NewToolResultError("message_id is required"), nil
	}

	res := h.Processor.Process(ctx, id)
	result, err := jsonResult(res)
	if err != nil {
		return nil, err
	}
	result.IsError = res.Err != nil
	return result, nil
}

func (h *handlers) handleProcessMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := batch.ParseIDs(request.GetArguments()["message_ids"], "message_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report := batch.Run(ctx, ids, func(ctx context.Context, id string) (scheduler.Result, error) {
		res := h.Processor.Process(ctx, id)
		return res, res.Err
	})
	result, err := jsonResult(report)
	if err != nil {
		return nil, err
	}
	result.IsError = report.Successful == 0
	return result, nil
}
