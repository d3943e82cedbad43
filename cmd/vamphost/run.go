package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/vamphost/internal/app"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <library:plugin> <file.wav>",
	Short: "Run a plugin over an audio file",
	Long: `Run a plugin over a PCM WAV file and print the features of one output,
one line per feature:

  <timestamp>: <values> <label>

Frequency domain plugins are fed windowed spectra. Audio with more channels
than the plugin accepts is mixed down to mono unless --adapt-channels is
given.`,
	Example: `  vamphost run vamp-example-plugins:percussiononsets drums.wav
  vamphost run vamp-example-plugins:percussiononsets drums.wav --output detectionfunction
  vamphost run mylib:meter stereo.wav --output 1 --block-size 2048 --step-size 512`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

var (
	runOutput        string
	runOutFile       string
	runBlockSize     int
	runStepSize      int
	runAdaptChannels bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runOutput, "output", "n", "", "output identifier or index (default: first output)")
	runCmd.Flags().StringVarP(&runOutFile, "out-file", "o", "", "write features to this file instead of stdout")
	runCmd.Flags().IntVar(&runBlockSize, "block-size", 0, "block size in frames (default: plugin preference)")
	runCmd.Flags().IntVar(&runStepSize, "step-size", 0, "step size in frames (default: plugin preference)")
	runCmd.Flags().BoolVar(&runAdaptChannels, "adapt-channels", false, "let the channel adapter reconcile channel counts instead of mixing down")
}

func runRun(cmd *cobra.Command, args []string) error {
	host, err := loadHost(cmd)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if runOutFile != "" {
		f, err := os.Create(runOutFile)
		if err != nil {
			return fmt.Errorf("creating %s: %w", runOutFile, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	res, err := host.Run(cmd.Context(), app.RunRequest{
		Key:           args[0],
		Output:        runOutput,
		AudioPath:     args[1],
		BlockSize:     runBlockSize,
		StepSize:      runStepSize,
		AdaptChannels: runAdaptChannels,
	}, func(f app.Feature) error {
		return writeFeature(w, f)
	})
	if err != nil {
		return err
	}

	writeRunSummary(cmd.ErrOrStderr(), res)
	return nil
}

// writeFeature prints one feature as "timestamp: values label".
func writeFeature(w io.Writer, f app.Feature) error {
	var b strings.Builder
	b.WriteString(f.Timestamp)
	b.WriteString(":")
	for _, v := range f.Values {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	if f.Label != "" {
		b.WriteByte(' ')
		b.WriteString(f.Label)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRunSummary(w io.Writer, res *app.RunResult) {
	msg := fmt.Sprintf("%s output %d %q: %d block(s) of %d frames, step %d, %d feature(s)",
		res.Key, res.OutputIndex, res.Output.Identifier,
		res.Stats.Blocks, res.Sizes.BlockSize, res.Sizes.StepSize, res.Stats.Features)
	_, _ = fmt.Fprintln(w, styles.Muted.Render(msg))
	if res.MixedDown {
		_, _ = fmt.Fprintln(w, styles.Warning.Render("audio was mixed down to mono"))
	}
	if res.Sizes.Rounded {
		_, _ = fmt.Fprintln(w, styles.Warning.Render(fmt.Sprintf("block size rounded up to %d for the frequency domain", res.Sizes.BlockSize)))
	}
}
