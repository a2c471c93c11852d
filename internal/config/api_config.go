package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	keyAPIBaseURL = "api.base_url"
	keyAPITimeout = "api.timeout"

	// Upper bound on every network call, refreshes included
	defaultRequestTimeout = 15 * time.Second
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type API struct {
	v *viper.Viper
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the REST backend root without a trailing slash
func (a API) GetAPIBaseURL() string {
	return strings.TrimRight(a.v.GetString(keyAPIBaseURL), "/")
}

func (a API) GetRequestTimeout() time.Duration {
	d := a.v.GetDuration(keyAPITimeout)
	if d <= 0 {
		return defaultRequestTimeout
	}
	return d
}
