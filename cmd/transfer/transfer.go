// Package transfer implements the timbre-transfer subcommand.
package transfer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/transfer"
)

// Command creates the transfer command for processing a single audio
// file through the full pipeline.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer [input.wav]",
		Short: "Run timbre transfer on an audio file",
		Long: `Encode an audio file into the model's latent space, apply the
configured latent alterations and decode it back into audio.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Input = args[0]
			if err := conf.ValidateSettings(settings); err != nil {
				return err
			}
			outputPath, err := transfer.FileTransfer(cmd.Context(), settings)
			if err != nil {
				return err
			}
			fmt.Println(outputPath)
			return nil
		},
	}

	setupFlags(cmd, settings)
	return cmd
}

// setupFlags configures flags specific to the transfer command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().IntSliceVarP(&settings.Transfer.Channels, "channels", "c", settings.Transfer.Channels, "latent channels the alteration is applied to")
	cmd.Flags().Float64Var(&settings.Transfer.BiasStart, "bias-start", settings.Transfer.BiasStart, "first value of the linearly spaced bias")
	cmd.Flags().Float64Var(&settings.Transfer.BiasStop, "bias-stop", settings.Transfer.BiasStop, "last value of the linearly spaced bias")
	cmd.Flags().Float64VarP(&settings.Transfer.Gain, "gain", "g", settings.Transfer.Gain, "multiplier applied to the selected channels")
	cmd.Flags().BoolVarP(&settings.Transfer.Play, "play", "p", settings.Transfer.Play, "play the result when done")
	cmd.Flags().StringVar(&settings.Playback.Device, "device", settings.Playback.Device, "output device name, empty for system default")
}
