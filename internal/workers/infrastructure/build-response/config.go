// internal/workers/infrastructure/build-response/config.go
package buildresponse

import "time"

type Config struct {
	Timeout time.Duration
	// OutputSchema, when set, is the JSON schema every assembled response
	// must satisfy.
	OutputSchema map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
