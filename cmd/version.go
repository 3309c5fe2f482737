// Package cmd holds build information injected with ldflags:
//
//	go build -ldflags "-X github.com/thoreinstein/bashbuiltins/cmd.Version=v1.2.0" ./cmd/bbhost
package cmd

import "fmt"

// Build-time variables set via ldflags.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// Info returns the multi-line version report printed by "bbhost version".
func Info(program string) string {
	return fmt.Sprintf("%s version %s\n  commit: %s\n  built:  %s\n", program, Version, Commit, Date)
}
