package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"renamer/internal/analysis"
	"renamer/internal/observ"
	"renamer/internal/project"
	"renamer/internal/source"
)

// openProject opens the project named by --project, or the one containing
// the working directory.
func openProject(cmd *cobra.Command, fallback string) (*project.Project, error) {
	dir, err := cmd.Root().PersistentFlags().GetString("project")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = fallback
	}
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, err
		}
	}
	proj, err := project.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	return proj, nil
}

// loadSnapshot parses and resolves every file of proj.
func loadSnapshot(cmd *cobra.Command, proj *project.Project, jobs int, timer *observ.Timer) (*analysis.Snapshot, error) {
	host, err := analysis.NewHost(analysis.Options{Jobs: jobs})
	if err != nil {
		return nil, err
	}
	var snap *analysis.Snapshot
	err = timer.Measure("load", func() error {
		snap, err = host.Load(cmd.Context(), proj)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !quiet(cmd) {
		for _, id := range snap.BrokenFiles() {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s has syntax errors, references in it may be missed\n",
				snap.Files().Get(id).Path)
		}
	}
	return snap, nil
}

// readPlanFiles loads the current contents of the files a plan edits, for
// previews outside a snapshot. Unreadable files are skipped.
func readPlanFiles(proj *project.Project, paths []string) *source.FileSet {
	fs := source.NewFileSetWithBase(proj.Dir)
	for _, rel := range paths {
		// #nosec G304 -- paths come from the plan and stay inside the project
		data, err := os.ReadFile(proj.Abs(rel))
		if err != nil {
			continue
		}
		content, flags := source.Normalize(data)
		fs.Add(rel, content, flags)
	}
	return fs
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}
