// Package report renders search responses for the command line.
//
// Writers share the Writer interface:
//   - SimpleWriter: aligned text for terminal display
//   - JSONWriter: the SearchResponse document, as served over HTTP
//   - MarkdownWriter: tables per eligibility bucket with a mermaid chart
//
// MultiWriter fans one report out to several writers, for example the
// terminal and a --output file.
package report
