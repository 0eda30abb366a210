// Package main provides the entry point for the wikicrawl CLI.
package main

func main() {
	Execute()
}
