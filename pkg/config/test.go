package config

import "time"

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	// Port 0 lets the OS pick a free port so test runs don't collide.
	cfg.ServerPort = 0
	cfg.ThrottleMinDelay = 0
	cfg.ThrottleMaxDelay = 0
	cfg.ScanInterval = time.Hour
}
