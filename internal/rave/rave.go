// Package rave wraps the pre-trained encoder/decoder graph pair behind
// a small inference API. The graphs are opaque, this package only moves
// audio and latent tensors in and out of them.
package rave

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/go-tflite/delegates/xnnpack"

	"github.com/tphakala/rave-go/internal/assets"
	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/cpuspec"
	"github.com/tphakala/rave-go/internal/errors"
)

// RAVE holds the loaded encoder and decoder interpreters. Inference
// methods are safe for concurrent use, invocations serialize on an
// internal mutex.
type RAVE struct {
	Settings *conf.Settings

	encoder *tflite.Interpreter
	decoder *tflite.Interpreter
	shapes  GraphShapes

	mu sync.Mutex
}

// New loads the configured model bundle and allocates both
// interpreters.
func New(settings *conf.Settings) (*RAVE, error) {
	start := time.Now()

	encoderPath, decoderPath, err := assets.ModelPaths(settings)
	if err != nil {
		return nil, err
	}

	r := &RAVE{Settings: settings}
	threads := determineThreadCount(settings.Model.Threads)

	r.encoder, err = r.loadGraph(encoderPath, threads)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to initialize encoder: %w", err)).
			Component("rave").
			Category(errors.CategoryModelInit).
			ModelContext(encoderPath, settings.Model.Name).
			Timing("model-init", time.Since(start)).
			Build()
	}
	r.decoder, err = r.loadGraph(decoderPath, threads)
	if err != nil {
		r.encoder.Delete()
		return nil, errors.New(fmt.Errorf("failed to initialize decoder: %w", err)).
			Component("rave").
			Category(errors.CategoryModelInit).
			ModelContext(decoderPath, settings.Model.Name).
			Timing("model-init", time.Since(start)).
			Build()
	}

	encIn := tensorShape(r.encoder.GetInputTensor(0))
	encOut := tensorShape(r.encoder.GetOutputTensor(0))
	decIn := tensorShape(r.decoder.GetInputTensor(0))
	decOut := tensorShape(r.decoder.GetOutputTensor(0))

	r.shapes, err = deriveShapes(encIn, encOut, decIn, decOut)
	if err != nil {
		r.Delete()
		return nil, err
	}

	log := GetLogger()
	if settings.Model.Threads == 0 {
		spec := cpuspec.GetCPUSpec()
		if spec.PerformanceCores > 0 {
			log.Info("model initialized",
				slog.String("model", settings.Model.Name),
				slog.Int("latent_dims", r.shapes.LatentDims),
				slog.Int("block_ratio", r.shapes.BlockRatio),
				slog.Int("threads", threads),
				slog.Int("performance_cores", spec.PerformanceCores),
				slog.Int("total_cpus", runtime.NumCPU()))
		} else {
			log.Info("model initialized",
				slog.String("model", settings.Model.Name),
				slog.Int("latent_dims", r.shapes.LatentDims),
				slog.Int("block_ratio", r.shapes.BlockRatio),
				slog.Int("threads", threads),
				slog.Int("total_cpus", runtime.NumCPU()))
		}
	} else {
		log.Info("model initialized",
			slog.String("model", settings.Model.Name),
			slog.Int("latent_dims", r.shapes.LatentDims),
			slog.Int("block_ratio", r.shapes.BlockRatio),
			slog.Int("threads", threads),
			slog.Bool("threads_configured", true))
	}

	return r, nil
}

// loadGraph reads a TFLite graph from disk and builds an allocated
// interpreter for it.
func (r *RAVE) loadGraph(modelPath string, threads int) (*tflite.Interpreter, error) {
	modelData, err := os.ReadFile(modelPath) //nolint:gosec // G304: modelPath is from application settings
	if err != nil {
		return nil, errors.New(err).
			Component("rave").
			Category(errors.CategoryModelLoad).
			FileContext(modelPath, 0).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, errors.Newf("cannot parse TensorFlow Lite model").
			Component("rave").
			Category(errors.CategoryModelLoad).
			FileContext(modelPath, int64(len(modelData))).
			Build()
	}

	options := tflite.NewInterpreterOptions()

	log := GetLogger()
	if r.Settings.Model.UseXNNPACK {
		delegate := xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(max(1, threads-1))}) //nolint:gosec // G115: thread count bounded by CPU count, safe conversion
		if delegate == nil {
			log.Warn("failed to create XNNPACK delegate, falling back to default CPU")
			options.SetNumThread(threads)
		} else {
			options.AddDelegate(delegate)
			options.SetNumThread(1)
		}
	} else {
		options.SetNumThread(threads)
	}

	options.SetErrorReporter(func(msg string, userData any) {
		GetLogger().Error("TFLite error", slog.String("message", msg))
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		return nil, errors.Newf("cannot create interpreter").
			Component("rave").
			Category(errors.CategoryModelInit).
			FileContext(modelPath, 0).
			Build()
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		return nil, errors.Newf("tensor allocation failed").
			Component("rave").
			Category(errors.CategoryModelInit).
			FileContext(modelPath, 0).
			Build()
	}

	// TFLite keeps its own copy of the graph data
	runtime.GC()

	return interpreter, nil
}

// Shapes returns the tensor geometry of the loaded graph pair.
func (r *RAVE) Shapes() GraphShapes {
	return r.shapes
}

// LatentDims returns the number of latent channels the model uses.
func (r *RAVE) LatentDims() int {
	return r.shapes.LatentDims
}

// BlockRatio returns the number of audio samples one latent step spans.
func (r *RAVE) BlockRatio() int {
	return r.shapes.BlockRatio
}

// Delete releases both interpreters.
func (r *RAVE) Delete() {
	if r.encoder != nil {
		r.encoder.Delete()
		r.encoder = nil
	}
	if r.decoder != nil {
		r.decoder.Delete()
		r.decoder = nil
	}
}

func tensorShape(t *tflite.Tensor) []int {
	dims := make([]int, t.NumDims())
	for i := range dims {
		dims[i] = t.Dim(i)
	}
	return dims
}

// determineThreadCount resolves the interpreter thread count. Zero asks
// cpuspec for the machine's performance core count.
func determineThreadCount(configuredThreads int) int {
	systemCPUCount := runtime.NumCPU()

	if configuredThreads == 0 {
		spec := cpuspec.GetCPUSpec()
		optimalThreads := spec.GetOptimalThreadCount()
		if optimalThreads > 0 {
			return min(optimalThreads, systemCPUCount)
		}
		return systemCPUCount
	}

	if configuredThreads > systemCPUCount {
		return systemCPUCount
	}
	return configuredThreads
}
