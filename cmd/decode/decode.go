// Package decode implements the latent-to-audio subcommand.
package decode

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/transfer"
)

var (
	outputFile string
	force      bool
)

// Command creates the decode command for synthesizing audio from a
// latent file.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [input.ravez]",
		Short: "Decode a latent file into a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.ValidateSettings(settings); err != nil {
				return err
			}
			return transfer.DecodeFromFile(cmd.Context(), settings, args[0], outputFile, force)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "out", "O", "", "WAV file path, defaults to the input with a .wav extension")
	cmd.Flags().BoolVar(&force, "force", false, "decode even when the latent was encoded by a different model")
	return cmd
}
