// Package main provides the entry point for the talentsift CLI.
package main

import (
	"os"

	"github.com/talentsift/talentsift/cmd/talentsift/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
