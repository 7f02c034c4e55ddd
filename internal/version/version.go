// Package version carries build metadata of the renamer CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Tool is the name plans and reports are stamped with.
const Tool = "renamer"

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// VersionString returns "renamer <version>" without colors.
func VersionString() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return Tool + " " + v
}

// Fprint writes the version with its major, minor and patch parts colored.
// color.NoColor turns the colors off.
func Fprint(w io.Writer) {
	v := strings.TrimSpace(Version)
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		fmt.Fprint(w, v)
		return
	}
	fmt.Fprint(w, majorColor.Sprint(parts[0])+"."+minorColor.Sprint(parts[1])+"."+patchColor.Sprint(parts[2]))
	if suffix != "" {
		fmt.Fprint(w, "-"+suffix)
	}
}
