// Package main is the entry point for the sqlbridge CLI application.
// It serves SmartClient-style data requests against SQL databases.
package main

import (
	"sqlbridge/cli/cmd"
)

func main() {
	cmd.Execute()
}
