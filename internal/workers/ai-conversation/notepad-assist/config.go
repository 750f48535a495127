// internal/workers/ai-conversation/notepad-assist/config.go
package notepadassist

import "time"

type Config struct {
	Timeout   time.Duration
	MaxTokens int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   60 * time.Second,
		MaxTokens: 800,
	}
}
