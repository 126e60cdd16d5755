// Copyright IBM Corp. 2023, 2025

package main

import "github.com/hashicorp/go-hunk/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the hunkinfo cli
func main() {
	cmd.Run(version, commit, date)
}
