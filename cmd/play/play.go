// Package play implements the local playback subcommand.
package play

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/rave-go/internal/audiofile"
	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/playback"
)

var listDevices bool

// Command creates the play command for playing an audio file through
// an output device.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [input.wav]",
		Short: "Play an audio file through an output device",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listDevices {
				return printDevices()
			}
			if len(args) != 1 {
				return cmd.Usage()
			}

			info, err := audiofile.Probe(args[0])
			if err != nil {
				return err
			}
			samples, err := audiofile.ReadAudioFile(args[0], info.SampleRate)
			if err != nil {
				return err
			}
			return playback.Play(cmd.Context(), samples, info.SampleRate, settings.Playback.Device)
		},
	}

	cmd.Flags().BoolVarP(&listDevices, "list", "l", false, "list playback devices and exit")
	cmd.Flags().StringVar(&settings.Playback.Device, "device", settings.Playback.Device, "output device name, empty for system default")
	return cmd
}

func printDevices() error {
	devices, err := playback.ListDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		fmt.Printf("%s [%d] %s (%s)\n", marker, d.Index, d.Name, d.ID)
	}
	return nil
}
