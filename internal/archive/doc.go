// Package archive persists extracted page content in a project
// workspace. Content lives as JSON documents under the processed
// directory (raw HTML under raw/), while an SQLite index keeps the
// per-URL metadata queryable without touching the content files.
package archive
