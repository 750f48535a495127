// internal/workers/infrastructure/save-onboarding/config.go
package saveonboarding

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
