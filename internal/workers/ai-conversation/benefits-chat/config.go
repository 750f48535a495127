// internal/workers/ai-conversation/benefits-chat/config.go
package benefitschat

import "time"

type Config struct {
	Timeout           time.Duration
	StoreTimeout      time.Duration
	FastPathTimeout   time.Duration
	FastPathMaxTokens int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           120 * time.Second,
		StoreTimeout:      10 * time.Second,
		FastPathTimeout:   60 * time.Second,
		FastPathMaxTokens: 2000,
	}
}
