// Package config handles objtool configuration loading and management.
package config

// Config holds all objtool settings.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// CacheConfig holds disk cache settings.
type CacheConfig struct {
	Name string `yaml:"name"` // Cache name under the user cache directory
	Dir  string `yaml:"dir"`  // Explicit cache directory; overrides Name when set

	Enabled bool `yaml:"enabled"`

	// MappedData loads cache entries via memory mapping instead of copying.
	MappedData bool `yaml:"mapped_data"`

	// HashContents keys cache entries by source content hash instead of
	// source path, so entries survive file moves and renames.
	HashContents bool `yaml:"hash_contents"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Name:         "objtool",
			Enabled:      true,
			MappedData:   false,
			HashContents: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
