package config

import "time"

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

// API holds the location of the remote credibuy REST API.
type API struct {
	BaseURL string        `env:"API_URL, default=http://localhost:8000"`
	Timeout time.Duration `env:"API_TIMEOUT, default=15s"`
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return a.BaseURL
}

func (a API) GetAPITimeout() time.Duration {
	return a.Timeout
}
