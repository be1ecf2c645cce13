// conf/consts.go shared audio and model constants
package conf

const (
	// DefaultSampleRate is the sample rate RAVE export bundles are trained
	// at unless the model configuration says otherwise.
	DefaultSampleRate = 44100

	// NumChannels is fixed: RAVE models operate on mono audio.
	NumChannels = 1

	// BitDepth used for WAV export.
	BitDepth = 16

	// DefaultModelBaseURL is where `rave fetch` looks for model bundles.
	DefaultModelBaseURL = "https://play.forum.ircam.fr/rave-vst-api/get_model"

	// DefaultModelName is the bundle fetched when none is configured.
	DefaultModelName = "vintage"
)

// Log rotation types
const (
	RotationDaily  = "daily"
	RotationWeekly = "weekly"
	RotationSize   = "size"
)
