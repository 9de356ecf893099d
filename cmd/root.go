// Package cmd implements the operator-facing command line front end for
// the collision library: loading a map file and printing its checksum and
// geometry counts, and running a batch of YAML-described trace scenarios
// against a loaded map (SPEC_FULL.md "CLI front-end" expansion). Grounded
// on the teacher's cmd/root.go, cmd/run.go, cmd/lint.go.
package cmd

import (
	"fmt"
	"os"

	"github.com/bloodmagesoftware/collide/project"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ccdtrace",
	Short: "ccdtrace - inspect BSP maps and run collision traces against them",
	Long: `ccdtrace loads compiled BSP map files and runs the continuous-collision
solver against them from the command line: print a map's checksum and
geometry counts, or run a batch of trace scenarios described in YAML and
print the resulting fraction, contact plane, and flags for each.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getProjectRoot returns the project root directory by looking for
// collide.yaml, matching the teacher's cmd/lint.go helper of the same
// name and shape.
func getProjectRoot() (string, error) {
	return project.FindRoot()
}
