// Package main is the single-binary entrypoint for LogWise.
// LogWise analyzes system logs with a locally hosted language model and
// produces root-cause-analysis reports. No log ever leaves the machine.
package main

import "github.com/logwise-ai/logwise/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
