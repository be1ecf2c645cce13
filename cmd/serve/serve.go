// Package serve implements the audition server subcommand.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/server"
)

// Command creates the serve command for auditioning rendered files in
// a browser.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered audio files over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Server.Enabled = true
			if err := conf.ValidateSettings(settings); err != nil {
				return err
			}

			s, err := server.New(settings)
			if err != nil {
				return err
			}
			return s.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&settings.Server.Listen, "listen", settings.Server.Listen, "listen address")
	return cmd
}
