package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagCacheDir = flag.String("cache-dir", "", "Cache directory")
	flagNoCache  = flag.Bool("no-cache", false, "Bypass the disk cache")
	flagMapped   = flag.Bool("mapped", false, "Memory-map cache entries")
	flagHash     = flag.Bool("hash-contents", false, "Key cache entries by content hash")
	flagByPath   = flag.Bool("by-path", false, "Key cache entries by source path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagCacheDir != "" {
		cfg.Cache.Dir = *flagCacheDir
	}
	if *flagNoCache {
		cfg.Cache.Enabled = false
	}
	if *flagMapped {
		cfg.Cache.MappedData = true
	}
	if *flagHash {
		cfg.Cache.HashContents = true
	}
	if *flagByPath {
		cfg.Cache.HashContents = false
	}
}
