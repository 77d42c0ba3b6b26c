package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by the command line tools.
const (
	FlagConfig     = "config"
	FlagDataRoot   = "data-root"
	FlagDumpDir    = "dump-dir"
	FlagDumpURL    = "dump-url"
	FlagMaxThreads = "max-threads"
	FlagVerbose    = "verbose"
)

// AddFlags registers the flags overriding the configuration.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "Configuration file (default .viquae.yaml in the current or home directory)")
	fs.String(FlagDataRoot, "", "Data root (default "+XDGDataDir()+")")
	fs.String(FlagDumpDir, "", "Directory of the dump shards (default <data-root>/commonswiki)")
	fs.String(FlagDumpURL, "", "Page listing the dump files")
	fs.Int(FlagMaxThreads, DefaultMaxThreads, "Concurrent downloads or loader workers")
	fs.BoolP(FlagVerbose, "v", false, "Verbose logging")
}

// FromFlags loads the configuration, then applies the flags that were
// set explicitly, and validates the result.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return nil, err
	}
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyFlags(fs); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

// ApplyFlags overrides c with the flags that were set explicitly.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	for name, dest := range map[string]*string{
		FlagDataRoot: &c.DataRoot,
		FlagDumpDir:  &c.DumpDir,
		FlagDumpURL:  &c.DumpURL,
	} {
		if fs.Changed(name) {
			if *dest, err = fs.GetString(name); err != nil {
				return err
			}
		}
	}
	if fs.Changed(FlagMaxThreads) {
		if c.MaxThreads, err = fs.GetInt(FlagMaxThreads); err != nil {
			return err
		}
	}
	return nil
}
