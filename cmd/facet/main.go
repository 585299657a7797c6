// Package main is the entry point for the facet CLI tool.
package main

import (
	"os"

	"github.com/facet-hq/facet/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
