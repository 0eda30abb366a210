// Package report renders crawl run summaries in multiple output
// formats. The Writer interface abstracts the destination and format so
// the same summary can go to the terminal, a Markdown file, and a JSON
// export in one pass.
package report
