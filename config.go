package main

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// InterpreterConfig holds the tunables an embedder or the CLI's -config
// flag can set: header search behavior, the default stack/arena budget,
// and whether filesystem includes are permitted at all (an embedder
// hosting untrusted scripts will usually leave this false and rely
// entirely on RegisterInclude).
type InterpreterConfig struct {
	IncludePaths     []string `toml:"include_paths"`
	AllowFileInclude bool     `toml:"allow_file_include"`
	DefaultPageSize  uint     `toml:"default_page_size"`
	ArenaLimit       uint     `toml:"arena_limit"`
}

// LoadConfigFile reads a TOML config file at path into an
// InterpreterConfig, for the CLI's -config flag.
func LoadConfigFile(path string) (InterpreterConfig, error) {
	var cfg InterpreterConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
