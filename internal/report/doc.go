// Package report renders extractions for people and tools.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: the record wire contract or a wrapped extraction
//   - MarkdownWriter: tables and lists for sharing
//
// It also defines the display phases of the catalog submission flow and a
// pure RenderView that turns a View into text.
package report
