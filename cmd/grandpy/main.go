// Package main provides the entry point for the grandpy CLI.
package main

import (
	"os"

	"github.com/tomlemeuch/grandpy/cmd/grandpy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
