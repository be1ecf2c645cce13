// Package encode implements the audio-to-latent subcommand.
package encode

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/transfer"
)

var outputFile string

// Command creates the encode command for compressing an audio file
// into a latent file.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [input.wav]",
		Short: "Encode an audio file into a latent file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Input = args[0]
			if err := conf.ValidateSettings(settings); err != nil {
				return err
			}
			return transfer.EncodeToFile(cmd.Context(), settings, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "out", "O", "", "latent file path, defaults to the input with a .ravez extension")
	return cmd
}
