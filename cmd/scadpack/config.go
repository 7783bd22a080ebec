package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// config holds the optional file-based defaults. Flags always win.
type config struct {
	LibraryPaths []string
	LibDirname   string
}

// loadConfig reads the config file at explicit, or the default location when
// explicit is empty. A missing default file is not an error.
func loadConfig(explicit string) (config, error) {
	v := viper.New()
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return config{
		LibraryPaths: v.GetStringSlice("library_paths"),
		LibDirname:   v.GetString("lib_dirname"),
	}, nil
}

// configDir resolves $XDG_CONFIG_HOME/scadpack, falling back to ~/.config.
func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "scadpack")
}
