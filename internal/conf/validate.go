package conf

import (
	"fmt"
	"net/url"
)

// ValidateSettings checks the loaded settings for values that would only
// fail later, deep inside the pipeline.
func ValidateSettings(settings *Settings) error {
	if err := validateModelSettings(&settings.Model); err != nil {
		return err
	}
	if err := validateTransferSettings(&settings.Transfer); err != nil {
		return err
	}
	return validateServerSettings(&settings.Server)
}

func validateModelSettings(model *ModelSettings) error {
	if model.SampleRate <= 0 {
		return fmt.Errorf("model sample rate must be positive, got %d", model.SampleRate)
	}

	if model.Threads < 0 {
		return fmt.Errorf("model threads must be >= 0, got %d", model.Threads)
	}

	// Either both explicit graph paths or neither
	if (model.EncoderPath == "") != (model.DecoderPath == "") {
		return fmt.Errorf("encoderpath and decoderpath must be set together")
	}

	if model.EncoderPath == "" && model.Name == "" {
		return fmt.Errorf("model name is required when no explicit graph paths are set")
	}

	if model.BaseURL != "" {
		u, err := url.Parse(model.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("model baseurl must be an http(s) URL, got %q", model.BaseURL)
		}
	}

	return nil
}

func validateTransferSettings(transfer *TransferSettings) error {
	for _, ch := range transfer.Channels {
		if ch < 0 {
			return fmt.Errorf("transfer channel indexes must be >= 0, got %d", ch)
		}
	}

	if transfer.Gain == 0 {
		return fmt.Errorf("transfer gain of 0 silences the selected channels, use a small value instead")
	}

	if transfer.OutputDir == "" {
		return fmt.Errorf("transfer output directory must not be empty")
	}

	return nil
}

func validateServerSettings(server *ServerSettings) error {
	if !server.Enabled {
		return nil
	}

	if server.Listen == "" {
		return fmt.Errorf("server listen address must not be empty when the server is enabled")
	}

	if server.CacheTTL < 0 {
		return fmt.Errorf("server cache TTL must be >= 0, got %d", server.CacheTTL)
	}

	return nil
}
