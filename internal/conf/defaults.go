// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "rave-go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/rave.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)
	viper.SetDefault("main.log.rotationday", time.Sunday)

	viper.SetDefault("model.name", DefaultModelName)
	viper.SetDefault("model.directory", "")
	viper.SetDefault("model.encoderpath", "")
	viper.SetDefault("model.decoderpath", "")
	viper.SetDefault("model.baseurl", DefaultModelBaseURL)
	viper.SetDefault("model.samplerate", DefaultSampleRate)
	viper.SetDefault("model.threads", 0)
	viper.SetDefault("model.usexnnpack", true)

	viper.SetDefault("transfer.channels", []int{0})
	viper.SetDefault("transfer.biasstart", 0.0)
	viper.SetDefault("transfer.biasstop", 0.0)
	viper.SetDefault("transfer.gain", 1.0)
	viper.SetDefault("transfer.outputdir", "output/")
	viper.SetDefault("transfer.play", false)

	viper.SetDefault("playback.device", "")

	viper.SetDefault("server.enabled", false)
	viper.SetDefault("server.listen", "127.0.0.1:8080")
	viper.SetDefault("server.cachettl", 60)

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
}
