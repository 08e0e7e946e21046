// Package main is the entry point for the bookkeeping CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/bookkeeping/cmd/bookkeeping/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
