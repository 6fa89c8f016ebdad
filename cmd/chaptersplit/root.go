package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string
	var opts splitOptions

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:           "chaptersplit <input>",
		Short:         "Split a chaptered audiobook into one file per chapter",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.qualitySet = cmd.Flags().Changed("quality")
			return runSplit(cmd, ctx, args[0], opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")

	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (default <input-stem>_chapters)")
	rootCmd.Flags().BoolVarP(&opts.keep, "keep", "k", false, "Keep stream-copied segments; skip MP3 conversion")
	rootCmd.Flags().IntVarP(&opts.quality, "quality", "q", 2, "MP3 VBR quality, 1 (best) to 9 (smallest)")
	rootCmd.Flags().BoolVarP(&opts.sanitize, "sanitize", "s", false, "Rewrite chapter titles into filesystem-safe names")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))

	return rootCmd
}
