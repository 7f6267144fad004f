package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"shellvm/internal/bcio"
	"shellvm/internal/jitbridge"
)

// config holds the values §1 of the expanded spec lets a .shellvm.toml
// file override. CLI flags always win over these; these always win over
// the built-in defaults from defaultConfig.
type config struct {
	JITThreshold int    `toml:"jit_threshold"`
	BufferSize   int    `toml:"buffer_size"`
	Color        string `toml:"color"`
	CacheDir     string `toml:"cache_dir"`
}

func defaultConfig() config {
	return config{
		JITThreshold: jitbridge.DefaultThreshold,
		BufferSize:   bcio.DefaultBufferSize,
		Color:        "auto",
	}
}

// loadConfig looks for .shellvm.toml in the current directory, then
// $XDG_CONFIG_HOME/shellvm/config.toml (or ~/.config/shellvm/config.toml),
// the same two-tier search cmd/surge's project manifest lookup uses for
// surge.toml. A missing file is not an error: it just means defaults.
func loadConfig() (config, error) {
	cfg := defaultConfig()

	path, ok, err := findConfigFile()
	if err != nil || !ok {
		return cfg, err
	}

	var fileCfg config
	if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
		return cfg, err
	}
	if fileCfg.JITThreshold > 0 {
		cfg.JITThreshold = fileCfg.JITThreshold
	}
	if fileCfg.BufferSize > 0 {
		cfg.BufferSize = fileCfg.BufferSize
	}
	if fileCfg.Color != "" {
		cfg.Color = fileCfg.Color
	}
	if fileCfg.CacheDir != "" {
		cfg.CacheDir = fileCfg.CacheDir
	}
	return cfg, nil
}

func findConfigFile() (string, bool, error) {
	if wd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(wd, ".shellvm.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		}
	}

	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false, nil
		}
		dir = filepath.Join(home, ".config")
	}
	candidate := filepath.Join(dir, "shellvm", "config.toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, true, nil
	}
	return "", false, nil
}

// resolvedCacheDir applies the same flag > config > default precedence
// to the JIT warm-cache directory. An explicit --cache-dir="" disables
// the cache; an empty cache_dir in the config file counts as unset, so
// the default directory is used. --no-jit-cache is handled by
// buildBridge before this is called.
func resolvedCacheDir(cfg config, flagValue string, flagChanged bool) (string, bool) {
	if flagChanged {
		return flagValue, flagValue != ""
	}
	if cfg.CacheDir != "" {
		return cfg.CacheDir, true
	}
	dir, err := jitbridge.DefaultCacheDir()
	if err != nil {
		return "", false
	}
	return dir, true
}
