package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:     "path",
	Aliases: []string{"p"},
	Short:   "Print the plugin search path",
	Long: `Print the directories searched for plugin libraries, one per line, in the
order they are scanned. A library found in an earlier directory hides one
with the same name in a later directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		host, err := loadHost(cmd)
		if err != nil {
			return err
		}
		for _, dir := range host.SearchPath() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
