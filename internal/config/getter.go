package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const prefix = "TRANSCODER"

// Parse reads the configuration file given as parameter.
// The listen port can also be set with the plain PORT variable.
func Parse(confFile string) (*Config, error) {
	conf := Config{}
	v := viper.New()

	setDefault(v)

	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // read in environment variables that match

	err := v.BindEnv("port", prefix+"_PORT", "PORT")
	if err != nil {
		return &conf, fmt.Errorf("failed to bind port env: %w", err)
	}

	if len(confFile) > 0 {
		v.SetConfigFile(confFile)

		err := v.ReadInConfig()
		if err != nil {
			return &conf, fmt.Errorf("failed to read config file %v: %w", confFile, err)
		}
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return &conf, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &conf, nil
}

func setDefault(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("gracefulDuration", "10s")
	v.SetDefault("readTimeout", "10s")
	v.SetDefault("logs.level", 1)
	v.SetDefault("logs.encoder", EncoderTypeConsole)
	v.SetDefault("metrics.port", 7777)
}
