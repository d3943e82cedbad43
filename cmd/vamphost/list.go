package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/vamphost/internal/app"
	"github.com/felixgeelhaar/vamphost/internal/domain/loader"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l", "ls"},
	Short:   "List the plugins on the search path",
	Long: `List every plugin library found on the search path, with the plugins
each provides. Plugins are lettered within their library, and outputs are
shown for plugins that have more than one.`,
	Example: `  vamphost list
  vamphost list --keys`,
	RunE: runList,
}

var listKeysOnly bool

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listKeysOnly, "keys", false, "print plugin keys only, one per line")
}

func runList(cmd *cobra.Command, _ []string) error {
	host, err := loadHost(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if listKeysOnly {
		cats, err := host.Categories(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			_, _ = fmt.Fprintln(w, c.Key.String())
		}
		return nil
	}

	libs, err := host.Libraries(ctx)
	if err != nil {
		return err
	}
	writeSearchPath(w, host.SearchPath())
	writeLibraries(w, libs)
	writeDiscoveryErrors(w, host.DiscoveryErrors())
	return nil
}

var titleCase = cases.Title(language.English)

// pluginLetter labels the i'th plugin of a library: A..Z, then numbers.
func pluginLetter(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("%d", i+1)
}

func writeLibraries(w io.Writer, libs []app.LibrarySummary) {
	_, _ = fmt.Fprintln(w, styles.Title.Render("Plugin libraries found in search path:"))
	if len(libs) == 0 {
		_, _ = fmt.Fprintln(w, styles.Muted.Render("  (none)"))
		return
	}

	for _, lib := range libs {
		_, _ = fmt.Fprintf(w, "\n  %s:\n", styles.Library.Render(lib.Path))
		for i, p := range lib.Plugins {
			letter := styles.Letter.Render("[" + pluginLetter(i) + "]")
			if p.Err != nil {
				_, _ = fmt.Fprintf(w, "    %s %s %s\n", letter, styles.Key.Render(p.Key.String()),
					styles.Warning.Render("(failed to load: "+p.Err.Error()+")"))
				continue
			}

			info := p.Info
			_, _ = fmt.Fprintf(w, "    %s [v%d] %s, %q [%s]\n", letter, info.PluginVersion, info.Name, info.Identifier, info.Maker)
			if len(p.Category) > 0 {
				_, _ = fmt.Fprintf(w, "    > %s\n", styles.Category.Render(strings.Join(p.Category, " > ")))
			}
			if info.Description != "" {
				_, _ = fmt.Fprintf(w, "    - %s\n", info.Description)
			}
			_, _ = fmt.Fprintf(w, "    %s\n", styles.Muted.Render(titleCase.String(info.InputDomain.String())+" domain"))

			if len(info.Outputs) > 1 {
				for j, o := range info.Outputs {
					_, _ = fmt.Fprintf(w, "      (%d) %s, %q\n", j+1, o.Name, o.Identifier)
					if o.Description != "" {
						_, _ = fmt.Fprintf(w, "      - %s\n", o.Description)
					}
				}
			}
		}
	}
}

func writeSearchPath(w io.Writer, dirs []string) {
	quoted := make([]string, len(dirs))
	for i, d := range dirs {
		quoted[i] = "[" + d + "]"
	}
	_, _ = fmt.Fprintf(w, "%s %s\n\n", styles.Title.Render("Plugin search path:"), strings.Join(quoted, " "))
}

func writeDiscoveryErrors(w io.Writer, errs []loader.DiscoveryError) {
	if len(errs) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", styles.Warning.Render(fmt.Sprintf("%d librar%s could not be used:", len(errs), plural(len(errs), "y", "ies"))))
	for _, e := range errs {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", e.Path, e.Err)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
