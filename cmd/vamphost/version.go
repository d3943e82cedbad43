package main

import (
	"fmt"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/spf13/cobra"
)

// Version information set by build flags.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "vamphost %s\n", version)
		_, _ = fmt.Fprintf(w, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(w, "  built:  %s\n", buildDate)
		_, _ = fmt.Fprintf(w, "  plugin API version: %d\n", vamp.APIVersion)
		_, _ = fmt.Fprintf(w, "  plugin SDK version: %s\n", vamp.SDKVersion)
	},
}
