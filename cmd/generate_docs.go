package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/invitebooker/internal/invite"
	"github.com/teemow/invitebooker/internal/scheduler"
	"github.com/teemow/invitebooker/internal/slots"
	"github.com/teemow/invitebooker/internal/tools/scheduling_tools"
)

type docsProcessor struct{}

func (docsProcessor) Process(context.Context, string) scheduler.Result {
	return scheduler.Result{}
}

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// Tool definitions do not depend on credentials, but process_message is
	// only registered with a processor, so a stub stands in for it.
	mcpSrv := newMCPServer()
	deps := scheduling_tools.Deps{
		Parser:    invite.NewParser(invite.Config{}),
		Slots:     slots.Options{Duration: 30 * time.Minute, DaysAhead: 7, Limit: 3},
		Processor: docsProcessor{},
	}
	if err := scheduling_tools.RegisterSchedulingTools(mcpSrv, deps); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	// Get the list of tools
	serverTools := mcpSrv.ListTools()

	// Extract mcp.Tool from each ServerTool
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	// Generate markdown documentation
	markdown := generateToolsMarkdown(tools)

	// Write to output
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document lists the tools available when running `invitebooker serve`.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(tools)

	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, anchor))
	}
	sb.WriteString("\n")

	sb.WriteString("## Times and Timezones\n\n")
	sb.WriteString("- Timestamps are ISO 8601. Values without an offset are read in the configured timezone.\n")
	sb.WriteString("- Busy intervals are half-open: a meeting ending at 10:00 does not conflict with one starting at 10:00.\n")
	sb.WriteString("- `process_message` and `process_messages` are only available when the server runs with `--yolo`.\n\n")

	// Generate documentation for each category
	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		sb.WriteString(fmt.Sprintf("## %s\n\n", category))

		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)

	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}

	return categories
}

func getCategoryFromToolName(name string) string {
	switch name {
	case "parse_invite":
		return "Parsing Tools"
	case "check_conflict", "suggest_slots":
		return "Availability Tools"
	case "process_message", "process_messages":
		return "Booking Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return sb.String()
	}

	// Required arguments first, each group alphabetical.
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	required := func(name string) bool { return slices.Contains(tool.InputSchema.Required, name) }
	sort.Slice(names, func(i, j int) bool {
		if ri, rj := required(names[i]), required(names[j]); ri != rj {
			return ri
		}
		return names[i] < names[j]
	})

	sb.WriteString("**Arguments:**\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		presence := "optional"
		if required(name) {
			presence = "required"
		}
		propType := getPropertyType(prop)
		desc, _ := prop["description"].(string)
		if desc == "" {
			desc = propType + " parameter"
		}
		fmt.Fprintf(&sb, "- `%s` (%s, %s): %s\n", name, propType, presence, desc)
	}
	sb.WriteString("\n")

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
