package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPGMaxConns      = 10
	DefaultPGMinConns      = 1
	DefaultPGIdleTime      = 2 * time.Minute
	DefaultProviderTimeout = 8 * time.Second
	DefaultPublishTimeout  = 5 * time.Second
	DefaultMigratePingWait = 15 * time.Second
)
