package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"renamer/internal/rename"
)

func newPrepareCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "prepare <file>:<line>:<col>|<file>@<offset>",
		Short: "Print the range of the renamable name under the cursor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			format = strings.ToLower(format)
			if format != "pretty" && format != "json" {
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
			loc, err := parseLocation(args[0])
			if err != nil {
				return err
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

			proj, err := openProject(cmd, "")
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(cmd, proj, 0, nil)
			if err != nil {
				return err
			}
			pos, err := loc.resolve(proj, snap)
			if err != nil {
				return err
			}
			sp, err := rename.Prepare(snap, pos)
			if err != nil {
				return explainRenameError(args[0], err)
			}

			fs := snap.Files()
			name := fs.Get(sp.File).Text(sp)
			if format == "json" {
				start, end := fs.Resolve(sp)
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"file":       fs.Get(sp.File).Path,
					"name":       name,
					"start_byte": sp.Start,
					"end_byte":   sp.End,
					"start_line": start.Line,
					"start_col":  start.Col,
					"end_line":   end.Line,
					"end_col":    end.Col,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatSpan(fs, sp), name)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}
