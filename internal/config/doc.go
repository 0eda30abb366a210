// Package config provides configuration structures and utilities for
// wikicrawl. It defines the crawl settings (politeness delays, robots.txt
// compliance, retry limits, workspace location) and the YAML configuration
// file loader.
//
// Required settings are pointer-typed in the file form (File) so that a
// missing key is distinguishable from an explicit zero value; Resolve
// returns an error naming the missing key.
package config
