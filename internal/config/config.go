package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "ADMIN_CONSOLE"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	ConsoleConfig
	CorsConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Console
	Cors
}

// New returns a Config built from defaults and ADMIN_CONSOLE_* environment variables
func New() Config {
	return newMainConfig(newViper())
}

// Load reads configFile (YAML) when given, then environment variables, then overrides.
// Overrides use the dotted key names, e.g. "api.base_url", and win over everything else.
func Load(configFile string, overrides map[string]any) (Config, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("[config Load] read %s: %w", configFile, err)
			}
		}
	}
	for k, val := range overrides {
		v.Set(k, val)
	}
	return newMainConfig(v), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func newMainConfig(v *viper.Viper) mainConfig {
	return mainConfig{
		EnvVars: EnvVars{v: v},
		API:     API{v: v},
		Storage: Storage{v: v},
		Console: Console{v: v},
		Cors:    Cors{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyAppName, "Admin Console")
	v.SetDefault(keyEnv, "DEV")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyAPIBaseURL, "http://localhost:4000")
	v.SetDefault(keyAPITimeout, defaultRequestTimeout)
	v.SetDefault(keyStorageBackend, StorageBackendFile)
	v.SetDefault(keyStoragePath, defaultStoragePath())
	v.SetDefault(keyListenAddr, ":8080")
	v.SetDefault(keyDemoBackend, false)
	v.SetDefault(keyAllowedOrigins, []string{})
}
