// Package commands wires the regen CLI.
package commands

import (
	"github.com/spf13/cobra"

	"regen"
	"regen/internal/output"
)

// RootCmd creates the root command for the regen CLI.
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "regen",
		Short: "Guarded-region code regeneration",
		Long: `Regen re-emits the generated portions of source files as the model
they were generated from evolves, while preserving developer-authored
edits placed alongside them.

Source files mark managed spans with comment delimiters:

  // <regen:generated:props:start>
  ...computed content...
  // <regen:generated:props:end>

Guard regions belong to the developer and are never regenerated; other
kinds are recomputed from the model snapshot, scoped to the markers whose
dependency keys actually changed. Manual edits inside generated regions
are detected and reported as conflicts, never silently overwritten.`,
		Version: regen.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}
