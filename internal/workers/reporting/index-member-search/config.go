// internal/workers/reporting/index-member-search/config.go
package indexmembersearch

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
		Index:   "members",
	}
}
