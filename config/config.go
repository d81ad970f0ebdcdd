// Package config loads nettopo settings from defaults, a YAML file, an
// optional .env file and the process environment, in that order of
// increasing precedence. Command-line flags are applied last by package cmd.
package config

import (
	"bytes"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/nettopo/topology"
)

// Environment variable names.
const (
	EnvAddr           = "NETTOPO_ADDR"
	EnvLogLevel       = "NETTOPO_LOG_LEVEL"
	EnvLogFormat      = "NETTOPO_LOG_FORMAT"
	EnvTolerance      = "NETTOPO_TOLERANCE"
	EnvMaxBranches    = "NETTOPO_MAX_BRANCHES"
	EnvAllowedOrigins = "NETTOPO_ALLOWED_ORIGINS"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the full application configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
	Topology Topology `yaml:"topology"`
}

// Server configures the HTTP transport.
type Server struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

// Log configures logrus.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Topology configures the tree search.
type Topology struct {
	Tolerance   float64 `yaml:"tolerance"`
	MaxBranches int     `yaml:"max_branches"`
}

// Default returns the built-in configuration.
// The branch limit keeps the exhaustive search tractable for a public server.
func Default() Config {
	return Config{
		Server: Server{
			Addr:              "127.0.0.1:5000",
			ReadHeaderTimeout: 2 * time.Second,
			AllowedOrigins:    []string{"*"},
			MaxBodyBytes:      1 << 20,
		},
		Log: Log{
			Level:  logrus.InfoLevel.String(),
			Format: FormatText,
		},
		Topology: Topology{
			Tolerance:   topology.DefaultTolerance,
			MaxBranches: 24,
		},
	}
}

// Load builds a Config from defaults, then path (YAML, optional), then
// envFile (dotenv, optional), then the process environment. Process
// variables win over the same names in envFile.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, errors.Wrap(err, "open config")
		}
		defer f.Close()
		if err = cfg.decode(f); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}

	fileEnv := map[string]string{}
	if envFile != "" {
		var err error
		if fileEnv, err = godotenv.Read(envFile); err != nil {
			return cfg, errors.Wrapf(err, "read env file %s", envFile)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// decode overlays YAML from r onto c; unknown keys are rejected.
func (c *Config) decode(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err = dec.Decode(c); err != nil && err != io.EOF {
		return err
	}

	return nil
}

// ApplyEnv overlays the NETTOPO_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvAllowedOrigins); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup(EnvTolerance); ok {
		tol, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvTolerance)
		}
		c.Topology.Tolerance = tol
	}
	if v, ok := lookup(EnvMaxBranches); ok {
		k, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvMaxBranches)
		}
		c.Topology.MaxBranches = k
	}

	return nil
}

// Validate rejects settings the rest of the program would panic or misbehave on.
func (c Config) Validate() error {
	if !(c.Topology.Tolerance > 0) || math.IsInf(c.Topology.Tolerance, 0) {
		return errors.Errorf("topology.tolerance must be positive and finite, got %v", c.Topology.Tolerance)
	}
	if c.Topology.MaxBranches < 0 {
		return errors.Errorf("topology.max_branches must be >= 0, got %d", c.Topology.MaxBranches)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	if c.Log.Format != FormatText && c.Log.Format != FormatJSON {
		return errors.Errorf("log.format must be %q or %q, got %q", FormatText, FormatJSON, c.Log.Format)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.Errorf("server.max_body_bytes must be > 0, got %d", c.Server.MaxBodyBytes)
	}

	return nil
}

// TopologyOptions converts the validated topology section into options.
func (c Config) TopologyOptions() []topology.Option {
	return []topology.Option{
		topology.WithTolerance(c.Topology.Tolerance),
		topology.WithMaxBranches(c.Topology.MaxBranches),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
