// Package fetch implements the model download subcommand.
package fetch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/rave-go/internal/assets"
	"github.com/tphakala/rave-go/internal/conf"
)

var (
	audioURL    string
	saveDefault bool
)

// Command creates the fetch command for downloading a model bundle and
// optional sample audio.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [model]",
		Short: "Download a model bundle",
		Long: `Download both graphs of a model bundle into the model directory.
Without an argument the configured default bundle is fetched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.ValidateSettings(settings); err != nil {
				return err
			}

			name := settings.Model.Name
			if len(args) == 1 {
				name = args[0]
			}

			manager := assets.NewManager(settings)
			if err := manager.FetchModel(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Printf("fetched model bundle %q\n", name)

			if saveDefault && name != settings.Model.Name {
				settings.Model.Name = name
				if err := conf.SaveSettings(); err != nil {
					return err
				}
				fmt.Printf("set %q as the default model\n", name)
			}

			if audioURL != "" {
				dest, err := manager.FetchSampleAudio(cmd.Context(), audioURL)
				if err != nil {
					return err
				}
				fmt.Printf("fetched sample audio to %s\n", dest)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&audioURL, "audio", "", "also download sample audio from this URL")
	cmd.Flags().BoolVar(&saveDefault, "save", false, "persist the fetched bundle as the default model")
	return cmd
}
