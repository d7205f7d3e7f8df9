// Package batch runs a tool operation over several IDs and reports partial
// failures per item instead of failing the whole call.
package batch
