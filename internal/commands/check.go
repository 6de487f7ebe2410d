package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"regen/internal/engine"
	"regen/internal/output"
)

// CheckCmd creates the 'check' command: a read-only pass that reports
// parse errors and pending conflicts without writing anything.
func CheckCmd() *cobra.Command {
	var showDiffs bool

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Verify markers parse and report pending conflicts",
		Long: `Check runs the regeneration pipeline without touching any file: marker
delimiters are validated, the model delta is computed, and regions whose
content diverges from their recorded baseline are reported as conflicts.

Exits non-zero when any file fails to parse or any conflict is found,
which makes it suitable as a CI gate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, showDiffs)
		},
	}

	cmd.Flags().BoolVar(&showDiffs, "diff", false, "Print a unified diff for each conflict")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, showDiffs bool) error {
	ws, err := loadWorkspace(args)
	if err != nil {
		return err
	}

	// Check never writes: the store is opened read-only, and a project
	// that has no state yet is simply checked as if everything changed.
	store, err := openStateReadOnly(ws)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	session, err := engine.NewSession(store)
	if err != nil {
		return err
	}

	var prevRaw []byte
	if store != nil {
		prevRaw, err = store.Snapshot()
		if err != nil {
			return err
		}
	}
	changed, err := changedKeys(prevRaw, ws.Snap)
	if err != nil {
		return err
	}

	inputs, err := scanInputs(ws, false)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		output.Info("No files with markers found")
		return nil
	}

	results := session.Regenerate(cmd.Context(), inputs, ws.Snap, changed, ws.Config.Workers)

	parseFailures := 0
	stale := 0
	for _, res := range results {
		if res.Err != nil {
			output.Error(res.Err.Error())
			parseFailures++
			continue
		}
		for _, genErr := range res.Errors {
			output.Warn(genErr.Error())
		}
		if res.Changed {
			output.Info("stale: " + res.Path)
			stale++
		}
	}

	conflicts := session.Conflicts()
	for _, c := range conflicts {
		output.Warn(fmt.Sprintf("conflict: %s#%s (%s)", c.File, c.MarkerID, c.Reason))
		if showDiffs {
			fmt.Fprintln(cmd.OutOrStdout(), c.Diff())
		}
	}

	if parseFailures == 0 && len(conflicts) == 0 {
		if stale > 0 {
			output.Info(fmt.Sprintf("%d files are stale; run 'regen generate'", stale))
		} else {
			output.Success("All markers are clean")
		}
		return nil
	}
	return fmt.Errorf("%d parse failures, %d conflicts", parseFailures, len(conflicts))
}
