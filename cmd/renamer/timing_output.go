package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"renamer/internal/observ"
)

// newTimer returns a timer when --timings is set, nil otherwise. A nil
// timer accepts every call.
func newTimer(cmd *cobra.Command) (*observ.Timer, error) {
	on, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if !on {
		return nil, nil
	}
	return observ.NewTimer(), nil
}

func printTimings(out io.Writer, timer *observ.Timer) {
	if timer == nil {
		return
	}
	fmt.Fprint(out, timer.Summary())
}
