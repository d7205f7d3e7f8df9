// Package common provides helpers shared by MCP tool implementations:
// argument accessors and the instrumentation wrapper every handler goes
// through.
package common
