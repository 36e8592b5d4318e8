package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s)", len(v.Problems))
}

func (c *Config) Validate() error {
	v := &ValidationError{}

	if c.ConfigVersion != 1 {
		v.Add("configVersion must be 1")
	}

	if err := validateListen(c.Server.Listen); err != nil {
		v.Add("server.listen invalid: %v", err)
	}

	if rl := c.Server.RateLimit; rl.Enabled {
		if rl.RPS <= 0 {
			v.Add("server.rateLimit.rps must be > 0")
		}
		if rl.Burst <= 0 {
			v.Add("server.rateLimit.burst must be > 0")
		}
		if rl.StatusCode != 0 && (rl.StatusCode < 400 || rl.StatusCode > 599) {
			v.Add("server.rateLimit.statusCode must be a 4xx or 5xx code")
		}
	}

	if c.Resolve.MaxDecodeDepth < 0 || c.Resolve.MaxDecodeDepth > MaxDecodeDepth {
		v.Add("resolve.maxDecodeDepth must be between 0 and %d", MaxDecodeDepth)
	}

	if c.TempFile.Enabled {
		if c.TempFile.Dir != "" {
			if err := ensureWritable(c.resolvePath(c.TempFile.Dir)); err != nil {
				v.Add("tempFile.dir invalid: %v", err)
			}
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		v.Add("logging.level must be debug|info|warn|error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		v.Add("logging.format must be text|json")
	}
	if c.Logging.ResolutionLog != "" {
		dir := filepath.Dir(c.resolvePath(c.Logging.ResolutionLog))
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			v.Add("logging.resolutionLog invalid: %s is not a directory", dir)
		}
	}

	if c.Metrics.Enabled {
		if err := validateListen(c.Metrics.Listen); err != nil {
			v.Add("metrics.listen invalid: %v", err)
		} else if c.Metrics.Listen == c.Server.Listen {
			v.Add("metrics.listen must differ from server.listen")
		}
	}

	if len(v.Problems) > 0 {
		sort.Strings(v.Problems)
		return v
	}
	return nil
}

func validateListen(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("address is required")
	}
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return err
	}
	return nil
}

func ensureWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	file, err := os.CreateTemp(dir, "fragpath-validate-*")
	if err != nil {
		return err
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}
