package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"regen/internal/conflict"
	"regen/internal/deps"
	"regen/internal/engine"
	"regen/internal/output"
)

// GenerateCmd creates the 'generate' command: the full regeneration pass.
func GenerateCmd() *cobra.Command {
	var dryRun, all, acceptAll, interactive bool

	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Regenerate marked regions from the model snapshot",
		Long: `Regenerate the marked regions of source files under path (default ".").

The changed-keys delta is derived by diffing the model snapshot against
the one stored from the previous run, so only markers depending on
changed keys are recomputed. Guard regions are never touched. Manual
edits inside generated regions are reported as conflicts and kept.

Examples:
  regen generate                  # regenerate what the model delta touches
  regen generate --all            # ignore the delta, regenerate everything
  regen generate --dry-run        # show what would change, write nothing
  regen generate --interactive    # decide each conflict at the keyboard`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, dryRun, all, acceptAll, interactive)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing files")
	cmd.Flags().BoolVar(&all, "all", false, "Regenerate every marker, ignoring the stored delta")
	cmd.Flags().BoolVar(&acceptAll, "accept-all", false, "Resolve every conflict by accepting the proposed content")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Resolve conflicts interactively")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, dryRun, all, acceptAll, interactive bool) error {
	strategy, err := conflict.NewStrategy(acceptAll, interactive)
	if err != nil {
		return err
	}

	ws, err := loadWorkspace(args)
	if err != nil {
		return err
	}

	statePath, err := ws.Config.StatePath(ws.Root)
	if err != nil {
		return err
	}
	store, err := deps.Open(statePath)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := engine.NewSession(store)
	if err != nil {
		return err
	}

	prevRaw, err := store.Snapshot()
	if err != nil {
		return err
	}
	if all {
		// Diffing against an empty snapshot marks every key changed.
		prevRaw = nil
	}
	changed, err := changedKeys(prevRaw, ws.Snap)
	if err != nil {
		return err
	}
	output.Verbose(fmt.Sprintf("%d changed model keys", len(changed)))

	inputs, err := scanInputs(ws, !dryRun)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		output.Info("No files with markers found")
		return nil
	}

	results := session.Regenerate(cmd.Context(), inputs, ws.Snap, changed, ws.Config.Workers)

	parseFailures := 0
	for _, res := range results {
		if res.Err != nil {
			// Parse errors are shown before any output for the file
			// is considered; the file stays untouched.
			output.Error(res.Err.Error())
			parseFailures++
			continue
		}
		for _, genErr := range res.Errors {
			output.Warn(genErr.Error())
		}
	}

	if dryRun {
		for _, res := range results {
			if res.Err == nil && res.Changed {
				output.Info("would rewrite " + res.Path)
			}
		}
		reportConflicts(session.Conflicts())
		return nil
	}

	tx := engine.NewTransaction()
	tx.AddResult(results...)
	if tx.Len() > 0 {
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	if err := session.Record(results...); err != nil {
		return err
	}
	if err := store.PutSnapshot(ws.Snap.Raw()); err != nil {
		return err
	}

	if err := resolveConflicts(session, strategy, acceptAll || interactive); err != nil {
		return err
	}

	changedFiles := 0
	for _, res := range results {
		if res.Err == nil && res.Changed {
			changedFiles++
		}
	}
	output.Success(fmt.Sprintf("Regenerated %d of %d files", changedFiles, len(results)))
	if parseFailures > 0 {
		output.Warn(fmt.Sprintf("%d files skipped due to parse errors", parseFailures))
	}
	return nil
}

// resolveConflicts walks reported conflicts through the chosen strategy.
// Without an explicit strategy flag the conflicts are only reported; the
// engine never resolves on its own.
func resolveConflicts(session *engine.Session, strategy conflict.Strategy, resolve bool) error {
	conflicts := session.Conflicts()
	if len(conflicts) == 0 {
		return nil
	}
	if !resolve {
		reportConflicts(conflicts)
		return nil
	}

	for _, c := range conflicts {
		resolution, err := strategy.Resolve(c)
		if err != nil {
			return err
		}
		switch resolution {
		case conflict.AcceptProposed:
			if err := acceptProposed(session, c); err != nil {
				return err
			}
			output.Info(fmt.Sprintf("accepted proposed content for %s#%s", c.File, c.MarkerID))
		case conflict.KeepExisting:
			// The edit wins: adopt it as the marker's baseline so the
			// next run doesn't re-report the same divergence.
			if err := session.AdoptBaseline(c.File, c.MarkerID, c.Existing); err != nil {
				return err
			}
			output.Info(fmt.Sprintf("kept existing content for %s#%s", c.File, c.MarkerID))
		case conflict.Abort:
			output.Warn("conflict resolution aborted")
			return nil
		}
	}
	return nil
}

func acceptProposed(session *engine.Session, c conflict.Conflict) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.File, err)
	}
	text, err := engine.ReplaceMarkerBody(c.File, string(data), c.MarkerID, c.Proposed)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.File, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.File, err)
	}
	return session.AdoptBaseline(c.File, c.MarkerID, c.Proposed)
}

func reportConflicts(conflicts []conflict.Conflict) {
	if len(conflicts) == 0 {
		return
	}
	output.Warn(fmt.Sprintf("%d conflicts need a decision (rerun with --interactive or --accept-all)", len(conflicts)))
	for _, c := range conflicts {
		output.Step(fmt.Sprintf("%s#%s: %s", c.File, c.MarkerID, c.Reason))
	}
}
