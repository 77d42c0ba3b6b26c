// Package config gathers the settings of the command line tools from
// defaults, an optional YAML file, the environment and a .env file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	wikidump "github.com/HuyNg2024/ViQuae"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the data directory.
	AppName = "viquae"
	// DefaultConfigFile is looked up in the current and home directories.
	DefaultConfigFile = ".viquae.yaml"
	// DefaultMaxThreads bounds concurrent downloads and loader workers.
	DefaultMaxThreads = 4
)

// Environment variables overriding the file settings.
const (
	EnvDataRoot   = "VIQUAE_DATA_ROOT"
	EnvDumpURL    = "VIQUAE_DUMP_URL"
	EnvDumpDir    = "VIQUAE_DUMP_DIR"
	EnvMaxThreads = "VIQUAE_MAX_THREADS"
)

var (
	ErrConfigNotFound    = errors.New("configuration file not found")
	ErrNoDataRoot        = errors.New("no data root configured")
	ErrNoDumpURL         = errors.New("no dump URL configured")
	ErrInvalidMaxThreads = errors.New("invalid max threads: must be positive")
)

// Config holds the tool settings.
type Config struct {
	DataRoot   string   `yaml:"data_root"`
	DumpURL    string   `yaml:"dump_url"`
	DumpDir    string   `yaml:"dump_dir"`
	MaxThreads int      `yaml:"max_threads"`
	Extensions []string `yaml:"extensions"`
}

// New gets a Config with the default settings.
func New() *Config {
	return &Config{
		DataRoot:   XDGDataDir(),
		DumpURL:    wikidump.DefaultDumpURL,
		MaxThreads: DefaultMaxThreads,
	}
}

// XDGDataDir is the default data root, e.g. ~/.local/share/viquae.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// FindFile returns configPath if it exists, else the first
// DefaultConfigFile in the current or home directory, else "".
func FindFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, d := range dirs {
		p := filepath.Join(d, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFile overrides c with the settings present in the YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	return nil
}

// LoadEnv overrides c with the environment, after loading the given
// .env files (.env in the current directory by default) without
// replacing variables already set.
func (c *Config) LoadEnv(envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 {
			return errors.Wrap(err, "loading env")
		}
		log.Debug("No .env file found, using the environment")
	}

	if v, ok := os.LookupEnv(EnvDataRoot); ok {
		c.DataRoot = v
	}
	if v, ok := os.LookupEnv(EnvDumpURL); ok {
		c.DumpURL = v
	}
	if v, ok := os.LookupEnv(EnvDumpDir); ok {
		c.DumpDir = v
	}
	if v, ok := os.LookupEnv(EnvMaxThreads); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(ErrInvalidMaxThreads, "%s=%q", EnvMaxThreads, v)
		}
		c.MaxThreads = n
	}
	return nil
}

// Load gets the defaults overridden by the config file, if any, then
// by the environment.  An explicit configPath must exist.
func Load(configPath string) (*Config, error) {
	c := New()
	if p := FindFile(configPath); p != "" {
		if err := c.LoadFile(p); err != nil {
			return nil, err
		}
		log.Debugf("Loaded configuration from %s", p)
	} else if configPath != "" {
		return nil, errors.Wrap(ErrConfigNotFound, configPath)
	}
	if err := c.LoadEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.DataRoot == "":
		return ErrNoDataRoot
	case c.DumpURL == "":
		return ErrNoDumpURL
	case c.MaxThreads <= 0:
		return ErrInvalidMaxThreads
	}
	return nil
}

// DumpPath is where the dump shards are kept, <data root>/commonswiki
// unless set explicitly.
func (c *Config) DumpPath() string {
	if c.DumpDir != "" {
		return c.DumpDir
	}
	return filepath.Join(c.DataRoot, "commonswiki")
}

// EntitiesPath is the entity index of a dataset subset.
func (c *Config) EntitiesPath(subset string) string {
	return filepath.Join(c.DataRoot, "meerqat_"+subset, "entities.json")
}
