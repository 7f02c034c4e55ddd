package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"renamer/internal/changefile"
	"renamer/internal/changefmt"
	"renamer/internal/fix"
)

func newApplyCmd() *cobra.Command {
	var opts fix.Options
	cmd := &cobra.Command{
		Use:   "apply <plan-file>",
		Short: "Apply a plan saved by rename --out",
		Long: `Apply a saved rename plan. Every edited file must still have the content the
plan was computed against; a changed file aborts the whole plan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
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

			plan, err := changefile.Read(args[0])
			if err != nil {
				return err
			}
			// план помнит свой проект; --project важнее
			root := plan.Root
			if _, statErr := os.Stat(root); root == "" || statErr != nil {
				root = ""
			}
			proj, err := openProject(cmd, root)
			if err != nil {
				return err
			}

			if !quiet(cmd) {
				paths := make([]string, 0, len(plan.Files))
				for _, f := range plan.Files {
					paths = append(paths, f.Path)
				}
				popts := changefmt.PrettyOpts{Color: colorEnabled()}
				if err := changefmt.Pretty(cmd.OutOrStdout(), plan, readPlanFiles(proj, paths), popts); err != nil {
					return err
				}
			}

			var res *fix.Result
			err = timer.Measure("apply", func() error {
				res, err = fix.Apply(cmd.Context(), proj, plan, opts)
				return err
			})
			if err != nil {
				return fmt.Errorf("apply %s: %w", args[0], err)
			}
			printApplyResult(cmd.ErrOrStderr(), res, opts.DryRun, quiet(cmd))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Force, "force", false, "apply even if touched files have uncommitted changes")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "check the plan without writing")
	return cmd
}
