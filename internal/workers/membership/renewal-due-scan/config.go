// internal/workers/membership/renewal-due-scan/config.go
package renewalduescan

import "time"

// The scan walks every member document, so it gets a longer budget than the
// interactive workers.
type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Minute,
	}
}
