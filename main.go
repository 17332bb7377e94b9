// Package main is the entry point for the scopecss CLI.
package main

import "scopecss.dev/pkg/scopecss/cmd"

func main() {
	cmd.Execute()
}
