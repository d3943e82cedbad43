package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/felixgeelhaar/vamphost/internal/app"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories [library:plugin]",
	Aliases: []string{"cat"},
	Short:   "Show plugin categories",
	Long: `Show the category hierarchy declared for installed plugins in the .cat
files beside their libraries. With a key, print only that plugin's
category.`,
	Example: `  vamphost categories
  vamphost categories vamp-example-plugins:percussiononsets`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, err := loadHost(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if len(args) == 1 {
			p, err := host.PluginInfo(ctx, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(p.Category, " > "))
			return nil
		}

		cats, err := host.Categories(ctx)
		if err != nil {
			return err
		}
		writeCategories(cmd.OutOrStdout(), cats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

// writeCategories groups plugins under their category paths, sorted by
// path, with uncategorised plugins last.
func writeCategories(w io.Writer, cats []app.CategorisedPlugin) {
	groups := make(map[string][]string)
	var uncategorised []string
	for _, c := range cats {
		if len(c.Category) == 0 {
			uncategorised = append(uncategorised, c.Key.String())
			continue
		}
		path := strings.Join(c.Category, " > ")
		groups[path] = append(groups[path], c.Key.String())
	}

	paths := make([]string, 0, len(groups))
	for p := range groups {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		_, _ = fmt.Fprintln(w, styles.Category.Render(p))
		for _, key := range groups[p] {
			_, _ = fmt.Fprintf(w, "  %s\n", key)
		}
	}
	if len(uncategorised) > 0 {
		_, _ = fmt.Fprintln(w, styles.Muted.Render("(uncategorised)"))
		for _, key := range uncategorised {
			_, _ = fmt.Fprintf(w, "  %s\n", key)
		}
	}
}
