// Package report renders command results for people and tools.
//
// Three formats are available:
//   - TextWriter: aligned plain text for the terminal
//   - JSONWriter: structured output for scripts
//   - MarkdownWriter: tables and alerts for sharing a scoring run
//
// All writers implement Writer, so the CLI picks one with New and never
// branches on the format again.
package report
