package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"regen/internal/config"
	"regen/internal/deps"
	"regen/internal/engine"
	"regen/internal/model"
	"regen/internal/output"
	"regen/internal/project"
)

// workspace is everything a command needs about the project at hand.
type workspace struct {
	Root   string
	Config *config.Config
	Snap   *model.Snapshot
}

func loadWorkspace(args []string) (*workspace, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	modelPath := cfg.ModelPath(root)
	raw, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("reading model snapshot %s: %w", modelPath, err)
	}
	snap, err := model.Parse(raw)
	if err != nil {
		return nil, err
	}

	return &workspace{Root: root, Config: cfg, Snap: snap}, nil
}

// scanInputs walks the project and reads every candidate file that
// actually contains markers. The progress bar covers this scan, which is
// the I/O-bound part of a run.
func scanInputs(ws *workspace, showProgress bool) ([]engine.FileInput, error) {
	walker := project.NewWalker(ws.Config.Include, ws.Config.Exclude)
	paths, err := walker.Walk(ws.Root)
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	var bar *progressbar.ProgressBar
	if showProgress && len(paths) > 0 {
		bar = progressbar.Default(int64(len(paths)), "scanning")
	}

	var inputs []engine.FileInput
	for _, path := range paths {
		if bar != nil {
			bar.Add(1)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		text := string(data)
		if !project.HasMarkers(text) {
			continue
		}
		inputs = append(inputs, engine.FileInput{Path: path, Text: text})
	}
	output.Verbose(fmt.Sprintf("%d of %d files carry markers", len(inputs), len(paths)))
	return inputs, nil
}

// openStateReadOnly opens the project's state database for inspection,
// or returns nil when no state exists yet. It never creates the state
// directory or the database file.
func openStateReadOnly(ws *workspace) (*deps.Store, error) {
	statePath := ws.Config.StateFile(ws.Root)
	if _, err := os.Stat(statePath); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking state db: %w", err)
	}
	return deps.OpenReadOnly(statePath)
}

// changedKeys derives the delta between the stored snapshot and the
// current one. With no stored snapshot everything counts as changed.
func changedKeys(prevRaw []byte, snap *model.Snapshot) ([]string, error) {
	var prev *model.Snapshot
	if prevRaw != nil {
		var err error
		prev, err = model.Parse(prevRaw)
		if err != nil {
			// A stored snapshot that no longer parses is treated as
			// absent; the run regenerates everything.
			prev = nil
		}
	}
	return model.Diff(prev, snap), nil
}
