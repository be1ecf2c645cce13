// Package transfer orchestrates the timbre-transfer pipeline: fetch
// assets, read audio, encode, alter the latent, decode and write the
// rendered result.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/rave-go/internal/assets"
	"github.com/tphakala/rave-go/internal/audiofile"
	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/errors"
	"github.com/tphakala/rave-go/internal/latent"
	"github.com/tphakala/rave-go/internal/logging"
	"github.com/tphakala/rave-go/internal/observability"
	"github.com/tphakala/rave-go/internal/playback"
	"github.com/tphakala/rave-go/internal/rave"
)

var (
	serviceLogger *slog.Logger
	initOnce      sync.Once
)

func getLogger() *slog.Logger {
	initOnce.Do(func() {
		serviceLogger = logging.ForService("transfer")
	})
	return serviceLogger
}

// FileTransfer runs the full pipeline on settings.Input and returns the
// path of the rendered WAV file.
func FileTransfer(ctx context.Context, settings *conf.Settings) (outputPath string, err error) {
	observability.TransferStarted()
	defer func() { observability.TransferFinished(err) }()

	startTime := time.Now()
	filename := truncateFilename(settings.Input)

	if _, err := os.Stat(settings.Input); err != nil {
		return "", errors.New(err).
			Component("transfer").
			Category(errors.CategoryNotFound).
			FileContext(settings.Input, 0).
			Build()
	}

	manager := assets.NewManager(settings)
	fmt.Printf("\r\033[K\033[37m📄 %s\033[0m | \033[33m⬇️  Fetching model %s\033[0m", filename, settings.Model.Name)
	if _, _, err := manager.EnsureModel(ctx); err != nil {
		return "", err
	}

	fmt.Printf("\r\033[K\033[37m📄 %s\033[0m | \033[33m🎵 Reading audio\033[0m", filename)
	samples, err := audiofile.ReadAudioFile(settings.Input, settings.Model.SampleRate)
	if err != nil {
		return "", err
	}

	model, err := rave.New(settings)
	if err != nil {
		return "", err
	}
	defer model.Delete()

	fmt.Printf("\r\033[K\033[37m📄 %s\033[0m | \033[33m🔍 Encoding\033[0m", filename)
	z, err := model.Encode(ctx, samples)
	if err != nil {
		return "", err
	}

	if err := ApplyAlterations(z, &settings.Transfer); err != nil {
		return "", err
	}

	fmt.Printf("\r\033[K\033[37m📄 %s\033[0m | \033[33m🔊 Decoding\033[0m", filename)
	rendered, err := model.Decode(ctx, z)
	if err != nil {
		return "", err
	}

	outputPath, err = outputFilePath(settings)
	if err != nil {
		return "", err
	}
	if err := audiofile.SaveWAV(outputPath, rendered, settings.Model.SampleRate); err != nil {
		return "", err
	}

	fmt.Printf("\r\033[K\033[37m📄 %s\033[0m | \033[32m✅ Transfer completed in %s\033[0m\n",
		filename, time.Since(startTime).Round(time.Millisecond))

	getLogger().Info("transfer complete",
		slog.String("input", settings.Input),
		slog.String("output", outputPath),
		slog.String("model", settings.Model.Name),
		slog.Int("samples", len(rendered)),
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))

	if settings.Transfer.Play {
		if err := playback.Play(ctx, rendered, settings.Model.SampleRate, settings.Playback.Device); err != nil {
			return "", err
		}
	}

	return outputPath, nil
}

// EncodeToFile encodes an audio file into a latent file.
func EncodeToFile(ctx context.Context, settings *conf.Settings, outputPath string) error {
	manager := assets.NewManager(settings)
	if _, _, err := manager.EnsureModel(ctx); err != nil {
		return err
	}

	samples, err := audiofile.ReadAudioFile(settings.Input, settings.Model.SampleRate)
	if err != nil {
		return err
	}

	model, err := rave.New(settings)
	if err != nil {
		return err
	}
	defer model.Delete()

	z, err := model.Encode(ctx, samples)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = replaceExt(settings.Input, ".ravez")
	}
	if err := z.SaveFile(outputPath); err != nil {
		return err
	}

	getLogger().Info("encoded to latent file",
		slog.String("input", settings.Input),
		slog.String("output", outputPath),
		slog.Int("dims", z.Dims),
		slog.Int("steps", z.Steps))
	return nil
}

// DecodeFromFile synthesizes audio from a latent file. The latent must
// have been encoded by the configured model bundle unless force is set.
func DecodeFromFile(ctx context.Context, settings *conf.Settings, latentPath, outputPath string, force bool) error {
	z, err := latent.LoadFile(latentPath)
	if err != nil {
		return err
	}

	if !force {
		if err := verifyProvenance(z, settings.Model.Name); err != nil {
			return err
		}
	}

	manager := assets.NewManager(settings)
	if _, _, err := manager.EnsureModel(ctx); err != nil {
		return err
	}

	model, err := rave.New(settings)
	if err != nil {
		return err
	}
	defer model.Delete()

	rendered, err := model.Decode(ctx, z)
	if err != nil {
		return err
	}

	sampleRate := z.SampleRate
	if sampleRate <= 0 {
		sampleRate = settings.Model.SampleRate
	}

	if outputPath == "" {
		outputPath = replaceExt(latentPath, ".wav")
	}
	if err := audiofile.SaveWAV(outputPath, rendered, sampleRate); err != nil {
		return err
	}

	getLogger().Info("decoded latent file",
		slog.String("input", latentPath),
		slog.String("output", outputPath),
		slog.Int("samples", len(rendered)))
	return nil
}

// verifyProvenance rejects latents encoded by a different model bundle.
// Channel counts can match across bundles, so the recorded model name is
// the only reliable signal.
func verifyProvenance(z *latent.Latent, modelName string) error {
	if z.ModelName == "" || z.ModelName == modelName {
		return nil
	}
	return errors.Newf("latent file was encoded by model %q but the configured model is %q",
		z.ModelName, modelName).
		Component("transfer").
		Category(errors.CategoryValidation).
		Context("latent_model", z.ModelName).
		Context("configured_model", modelName).
		Build()
}

// ApplyAlterations adds the configured linearly spaced bias to each
// selected latent channel and scales those channels by the configured
// gain. Channels beyond the model's range error.
func ApplyAlterations(z *latent.Latent, ts *conf.TransferSettings) error {
	if len(ts.Channels) == 0 {
		return nil
	}

	var bias []float32
	if ts.BiasStart != 0 || ts.BiasStop != 0 {
		bias = latent.Linspace(float32(ts.BiasStart), float32(ts.BiasStop), z.Steps)
	}
	gain := float32(ts.Gain)
	scale := gain != 0 && gain != 1

	for _, ch := range ts.Channels {
		if bias != nil {
			if err := z.AddBias(ch, bias); err != nil {
				return err
			}
		}
		if scale {
			if err := z.Scale(ch, gain); err != nil {
				return err
			}
		}
	}
	return nil
}

// outputFilePath derives the rendered file name from the input and
// model names, avoiding collisions with a random suffix.
func outputFilePath(settings *conf.Settings) (string, error) {
	dir, err := conf.ExpandPath(settings.Transfer.OutputDir)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(settings.Input), filepath.Ext(settings.Input))
	name := fmt.Sprintf("%s_%s.wav", base, settings.Model.Name)
	path := filepath.Join(dir, name)

	if _, err := os.Stat(path); err == nil {
		name = fmt.Sprintf("%s_%s_%s.wav", base, settings.Model.Name, uuid.NewString()[:8])
		path = filepath.Join(dir, name)
	}
	return path, nil
}

func replaceExt(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}

// truncateFilename shortens long file names for the status line.
func truncateFilename(path string) string {
	filename := filepath.Base(path)
	if len(filename) > 30 {
		return filename[:27] + "..."
	}
	return filename
}
