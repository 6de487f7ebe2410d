package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"regen/internal/engine"
	"regen/internal/output"
)

// DepsCmd creates the 'deps' command: inspect the recorded dependency
// graph, or query which markers a model key change would regenerate.
func DepsCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "deps [path]",
		Short: "Inspect the marker dependency graph",
		Long: `Deps prints the dependency edges recorded by previous runs: one line
per marker, listing the model keys it was generated from.

With --key, prints only the markers a change to that key would
regenerate, including markers under any nested key (a change to
"entities" affects markers depending on "entities.user.fields").`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, args, key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Show only markers affected by a change to this model key")

	return cmd
}

func runDeps(cmd *cobra.Command, args []string, key string) error {
	ws, err := loadWorkspace(args)
	if err != nil {
		return err
	}

	// Inspection only; no state is created for a project that has none.
	store, err := openStateReadOnly(ws)
	if err != nil {
		return err
	}
	if store == nil {
		output.Info("No state recorded yet; run 'regen generate' first")
		return nil
	}
	defer store.Close()

	session, err := engine.NewSession(store)
	if err != nil {
		return err
	}
	tracker := session.Tracker()

	if key != "" {
		affected := tracker.AffectedBy(key)
		if len(affected) == 0 {
			output.Info(fmt.Sprintf("No recorded markers depend on %q", key))
			return nil
		}
		files := make([]string, 0, len(affected))
		for file := range affected {
			files = append(files, file)
		}
		sort.Strings(files)
		for _, file := range files {
			for _, id := range affected[file] {
				fmt.Fprintf(cmd.OutOrStdout(), "%s#%s\n", file, id)
			}
		}
		return nil
	}

	refs := tracker.Refs()
	if len(refs) == 0 {
		output.Info("No dependency edges recorded yet; run 'regen generate' first")
		return nil
	}
	for _, ref := range refs {
		keys := tracker.Keys(ref.File, ref.MarkerID)
		fmt.Fprintf(cmd.OutOrStdout(), "%s#%s: %s\n", ref.File, ref.MarkerID, strings.Join(keys, ", "))
	}
	return nil
}
