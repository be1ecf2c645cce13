// Package inspect implements the latent inspection subcommand.
package inspect

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/latent"
)

// Command creates the inspect command for printing latent file
// metadata and statistics.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [input.ravez]",
		Short: "Print the shape and statistics of a latent file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			z, err := latent.LoadFile(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("model:       %s\n", z.ModelName)
			fmt.Printf("shape:       %d channels x %d steps\n", z.Dims, z.Steps)
			fmt.Printf("sample rate: %d Hz\n", z.SampleRate)
			fmt.Printf("block ratio: %d samples/step\n", z.BlockRatio)
			if z.SampleRate > 0 && z.BlockRatio > 0 {
				seconds := float64(z.Steps*z.BlockRatio) / float64(z.SampleRate)
				fmt.Printf("duration:    %.2fs\n", seconds)
			}

			stats, err := z.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("\n%8s %12s %12s %12s %12s\n", "channel", "mean", "stddev", "min", "max")
			for _, s := range stats {
				fmt.Printf("%8d %12.4f %12.4f %12.4f %12.4f\n", s.Channel, s.Mean, s.StdDev, s.Min, s.Max)
			}
			return nil
		},
	}
}
