package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/vamphost/internal/app"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <library:plugin>",
	Short: "Describe one plugin",
	Long: `Describe a plugin: its parameters, outputs, channel range, preferred block
and step sizes and category. The plugin is instantiated at the configured
sample rate.`,
	Example: `  vamphost info vamp-example-plugins:percussiononsets`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, err := loadHost(cmd)
		if err != nil {
			return err
		}
		p, err := host.PluginInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		writePluginInfo(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func writePluginInfo(w io.Writer, p *app.PluginSummary) {
	info := p.Info
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Title.Render(info.Name), styles.Key.Render("("+p.Key.String()+")"))
	if info.Description != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", info.Description)
	}
	_, _ = fmt.Fprintf(w, "  Maker:       %s\n", info.Maker)
	if info.Copyright != "" {
		_, _ = fmt.Fprintf(w, "  Copyright:   %s\n", info.Copyright)
	}
	_, _ = fmt.Fprintf(w, "  Version:     %d (API %d)\n", info.PluginVersion, info.APIVersion)
	_, _ = fmt.Fprintf(w, "  Domain:      %s\n", titleCase.String(info.InputDomain.String()))
	_, _ = fmt.Fprintf(w, "  Channels:    %d to %d\n", info.MinChannelCount, info.MaxChannelCount)
	_, _ = fmt.Fprintf(w, "  Block/step:  %s / %s\n", preferred(info.PreferredBlockSize), preferred(info.PreferredStepSize))
	if len(p.Category) > 0 {
		_, _ = fmt.Fprintf(w, "  Category:    %s\n", styles.Category.Render(strings.Join(p.Category, " > ")))
	}

	if len(info.Parameters) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", styles.Title.Render("Parameters:"))
		for _, param := range info.Parameters {
			_, _ = fmt.Fprintf(w, "  %s %q: %g to %g%s, default %g\n",
				param.Name, param.Identifier, param.MinValue, param.MaxValue, unit(param.Unit), param.DefaultValue)
		}
	}
	if len(info.Programs) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s %s\n", styles.Title.Render("Programs:"), strings.Join(info.Programs, ", "))
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", styles.Title.Render("Outputs:"))
	for i, o := range info.Outputs {
		_, _ = fmt.Fprintf(w, "  (%d) %s %q%s, %s\n", i, o.Name, o.Identifier, unit(o.Unit), describeSampling(o))
		if o.Description != "" {
			_, _ = fmt.Fprintf(w, "      %s\n", styles.Muted.Render(o.Description))
		}
	}
}

func preferred(n int) string {
	if n == 0 {
		return "any"
	}
	return fmt.Sprintf("%d", n)
}

func unit(u string) string {
	if u == "" {
		return ""
	}
	return " " + u
}

func describeSampling(o vamp.OutputDescriptor) string {
	bins := "variable bins"
	if o.HasFixedBinCount {
		bins = fmt.Sprintf("%d bin%s", o.BinCount, plural(o.BinCount, "", "s"))
	}
	switch o.SampleType {
	case vamp.FixedSampleRate:
		return fmt.Sprintf("%s at %g Hz", bins, o.SampleRate)
	case vamp.VariableSampleRate:
		return bins + ", variable rate"
	default:
		return bins + ", one per step"
	}
}
