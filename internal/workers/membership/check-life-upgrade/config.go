// internal/workers/membership/check-life-upgrade/config.go
package checklifeupgrade

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
