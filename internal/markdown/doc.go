// Package markdown provides the concrete implementation of the Markdown
// ingestion workflow: front matter extraction, filesystem discovery, and
// HTML rendering through goldmark.
package markdown
