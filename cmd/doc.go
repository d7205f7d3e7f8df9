// Package cmd implements the command-line interface for invitebooker.
//
// This package provides the following commands:
//   - run: Poll Gmail and book invitations on Google Calendar
//   - serve: Start the MCP server to provide scheduling tools for AI assistants
//   - parse: Parse an invitation without touching Gmail or the calendar
//   - slots: Propose free slots around given busy intervals
//   - auth: Store a Google OAuth token for an account
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
package cmd
