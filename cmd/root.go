// Package cmd assembles the rave command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/rave-go/cmd/decode"
	"github.com/tphakala/rave-go/cmd/encode"
	"github.com/tphakala/rave-go/cmd/fetch"
	"github.com/tphakala/rave-go/cmd/inspect"
	"github.com/tphakala/rave-go/cmd/play"
	"github.com/tphakala/rave-go/cmd/serve"
	"github.com/tphakala/rave-go/cmd/transfer"
	"github.com/tphakala/rave-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rave",
		Short: "Timbre transfer with pre-trained neural audio models",
		Long: `rave runs audio through a pre-trained encoder/decoder model pair,
optionally altering the compressed representation in between to
re-synthesize the input with a different sonic character.`,
		SilenceUsage: true,
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		transfer.Command(settings),
		encode.Command(settings),
		decode.Command(settings),
		fetch.Command(settings),
		play.Command(settings),
		inspect.Command(settings),
		serve.Command(settings),
	)

	return rootCmd
}

// setupFlags configures the global flags shared by all subcommands.
// Defaults come from the loaded configuration, so a flag only overrides
// what the user passes explicitly.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "enable debug output")
	cmd.PersistentFlags().StringVarP(&settings.Model.Name, "model", "m", settings.Model.Name, "model bundle name")
	cmd.PersistentFlags().StringVar(&settings.Model.Directory, "model-dir", settings.Model.Directory, "directory holding model artifacts")
	cmd.PersistentFlags().StringVar(&settings.Model.EncoderPath, "encoder", settings.Model.EncoderPath, "explicit encoder graph path")
	cmd.PersistentFlags().StringVar(&settings.Model.DecoderPath, "decoder", settings.Model.DecoderPath, "explicit decoder graph path")
	cmd.PersistentFlags().IntVarP(&settings.Model.Threads, "threads", "t", settings.Model.Threads, "number of CPU threads, 0 for optimal")
	cmd.PersistentFlags().BoolVar(&settings.Model.UseXNNPACK, "xnnpack", settings.Model.UseXNNPACK, "use the XNNPACK delegate")
	cmd.PersistentFlags().StringVarP(&settings.Transfer.OutputDir, "output", "o", settings.Transfer.OutputDir, "output directory for rendered audio")
}
