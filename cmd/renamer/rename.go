package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"renamer/internal/changefile"
	"renamer/internal/changefmt"
	"renamer/internal/fix"
	"renamer/internal/rename"
)

type renameOptions struct {
	format  string
	apply   bool
	force   bool
	out     string
	jobs    int
	preview int
}

func newRenameCmd() *cobra.Command {
	var opts renameOptions
	cmd := &cobra.Command{
		Use:   "rename <file>:<line>:<col>|<file>@<offset> <new-name>",
		Short: "Rename the symbol or module under the cursor",
		Long: `Compute the edits that rename the name at the given location and every
reference to it. Nothing is written unless --apply is given; --out saves the
change as a plan file for "renamer apply".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, args[0], args[1], opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "pretty", "output format (pretty|json)")
	f.BoolVar(&opts.apply, "apply", false, "write the change to disk")
	f.BoolVar(&opts.force, "force", false, "apply even if touched files have uncommitted changes")
	f.StringVar(&opts.out, "out", "", "save the change as a plan (.json, .msgpack or .mp)")
	f.IntVar(&opts.jobs, "jobs", 0, "parallel file reads and parses (0 = GOMAXPROCS)")
	f.IntVar(&opts.preview, "max-preview", 0, "preview at most this many changes per file (0 = all)")
	return cmd
}

func runRename(cmd *cobra.Command, locArg, newName string, opts renameOptions) (err error) {
	format := strings.ToLower(opts.format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	}
	loc, err := parseLocation(locArg)
	if err != nil {
		return err
	}
	// имя проверяем до загрузки проекта
	if _, err := rename.ValidateName(newName); err != nil {
		return fmt.Errorf("%q: %w", newName, err)
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()
	timer, err := newTimer(cmd)
	if err != nil {
		return err
	}
	defer printTimings(cmd.ErrOrStderr(), timer)

	proj, err := openProject(cmd, "")
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(cmd, proj, opts.jobs, timer)
	if err != nil {
		return err
	}
	pos, err := loc.resolve(proj, snap)
	if err != nil {
		return err
	}

	var res *rename.Result
	err = timer.Measure("rename", func() error {
		res, err = rename.Rename(snap, pos, newName)
		return err
	})
	if err != nil {
		return explainRenameError(locArg, err)
	}
	plan, err := changefile.FromResult(snap, res)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.out != "" {
		if err := changefile.Write(opts.out, plan); err != nil {
			return fmt.Errorf("save plan: %w", err)
		}
	}
	if format == "json" {
		if err := changefmt.JSON(out, plan, snap.Files(), changefmt.JSONOpts{IncludePositions: true, IncludePreviews: true}); err != nil {
			return err
		}
	} else if !quiet(cmd) {
		popts := changefmt.PrettyOpts{Color: colorEnabled(), MaxLines: opts.preview}
		if err := changefmt.Pretty(out, plan, snap.Files(), popts); err != nil {
			return err
		}
	}
	if !opts.apply {
		return nil
	}

	var applied *fix.Result
	err = timer.Measure("apply", func() error {
		applied, err = fix.Apply(cmd.Context(), proj, plan, fix.Options{Force: opts.force})
		return err
	})
	if err != nil {
		return err
	}
	if format == "pretty" {
		printApplyResult(cmd.ErrOrStderr(), applied, false, quiet(cmd))
	}
	return nil
}

func explainRenameError(loc string, err error) error {
	switch {
	case errors.Is(err, rename.ErrNotRenamable):
		return fmt.Errorf("%s: no renamable name here: %w", loc, err)
	case errors.Is(err, rename.ErrNoOccurrences):
		return fmt.Errorf("%s: nothing to rename: %w", loc, err)
	default:
		return err
	}
}

func printApplyResult(w io.Writer, res *fix.Result, dryRun, quiet bool) {
	if res == nil || quiet {
		return
	}
	verb := "Updated"
	if dryRun {
		verb = "Would update"
	}
	if len(res.Files) > 0 {
		fmt.Fprintf(w, "%s files:\n", verb)
		for _, change := range res.Files {
			fmt.Fprintf(w, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}
	for _, mv := range res.Moves {
		if dryRun {
			fmt.Fprintf(w, "Would move %s -> %s\n", mv.From, mv.To)
		} else {
			fmt.Fprintf(w, "Moved %s -> %s\n", mv.From, mv.To)
		}
	}
}
