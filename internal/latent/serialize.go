package latent

import (
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tphakala/rave-go/internal/errors"
)

const (
	envelopeMagic   = "RAVELAT"
	envelopeVersion = 1
)

// envelope is the on-disk form of a latent tensor.
type envelope struct {
	Magic      string    `msgpack:"magic"`
	Version    int       `msgpack:"version"`
	ModelName  string    `msgpack:"model"`
	SampleRate int       `msgpack:"sample_rate"`
	BlockRatio int       `msgpack:"block_ratio"`
	Dims       int       `msgpack:"dims"`
	Steps      int       `msgpack:"steps"`
	Data       []float32 `msgpack:"data"`
}

// Write serializes the latent to w.
func (z *Latent) Write(w io.Writer) error {
	if err := z.Validate(); err != nil {
		return err
	}

	env := envelope{
		Magic:      envelopeMagic,
		Version:    envelopeVersion,
		ModelName:  z.ModelName,
		SampleRate: z.SampleRate,
		BlockRatio: z.BlockRatio,
		Dims:       z.Dims,
		Steps:      z.Steps,
		Data:       z.Data,
	}
	if err := msgpack.NewEncoder(w).Encode(&env); err != nil {
		return errors.New(err).
			Component("latent").
			Category(errors.CategoryFileIO).
			Context("operation", "latent-encode").
			Build()
	}
	return nil
}

// Read deserializes a latent from r.
func Read(r io.Reader) (*Latent, error) {
	var env envelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, errors.New(err).
			Component("latent").
			Category(errors.CategoryFileParsing).
			Context("operation", "latent-decode").
			Build()
	}

	if env.Magic != envelopeMagic {
		return nil, errors.Newf("not a latent file, bad magic %q", env.Magic).
			Component("latent").
			Category(errors.CategoryFileParsing).
			Build()
	}
	if env.Version != envelopeVersion {
		return nil, errors.Newf("unsupported latent file version %d", env.Version).
			Component("latent").
			Category(errors.CategoryFileParsing).
			Build()
	}

	z := &Latent{
		Data:       env.Data,
		Dims:       env.Dims,
		Steps:      env.Steps,
		ModelName:  env.ModelName,
		SampleRate: env.SampleRate,
		BlockRatio: env.BlockRatio,
	}
	if err := z.Validate(); err != nil {
		return nil, err
	}
	return z, nil
}

// SaveFile writes the latent to filePath, creating parent directories.
func (z *Latent) SaveFile(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return errors.New(err).
			Component("latent").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}
	f, err := os.Create(filePath) //nolint:gosec // G304: path comes from user input by design
	if err != nil {
		return errors.New(err).
			Component("latent").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}
	defer func() { _ = f.Close() }()

	if err := z.Write(f); err != nil {
		return err
	}
	return f.Close()
}

// LoadFile reads a latent from filePath.
func LoadFile(filePath string) (*Latent, error) {
	f, err := os.Open(filePath) //nolint:gosec // G304: path comes from user input by design
	if err != nil {
		return nil, errors.New(err).
			Component("latent").
			Category(errors.CategoryFileIO).
			FileContext(filePath, 0).
			Build()
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}
