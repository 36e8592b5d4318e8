package config

type Config struct {
	ConfigVersion int            `yaml:"configVersion"`
	Server        ServerConfig   `yaml:"server"`
	Resolve       ResolveConfig  `yaml:"resolve"`
	TempFile      TempFileConfig `yaml:"tempFile"`
	Logging       LoggingConfig  `yaml:"logging"`
	Metrics       MetricsConfig  `yaml:"metrics"`

	baseDir string `yaml:"-"`
}

type ServerConfig struct {
	Listen    string          `yaml:"listen"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

type RateLimitConfig struct {
	Enabled    bool    `yaml:"enabled"`
	RPS        float64 `yaml:"rps"`
	Burst      int     `yaml:"burst"`
	StatusCode int     `yaml:"statusCode"`
}

// ResolveConfig controls how fragments received over HTTP are prepared.
// Base, when set, is resolved before the request fragments.
type ResolveConfig struct {
	Base           string `yaml:"base"`
	MaxDecodeDepth int    `yaml:"maxDecodeDepth"`
	Lowercase      bool   `yaml:"lowercase"`
}

type TempFileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	ResolutionLog string `yaml:"resolutionLog"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

const MaxDecodeDepth = 8

func (c *Config) BaseDir() string {
	return c.baseDir
}

func (c *Config) ResolvePath(path string) string {
	return c.resolvePath(path)
}
