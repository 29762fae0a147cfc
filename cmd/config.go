package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/milden6/datrie"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".trietool.yaml"

// Config is the content of a trietool configuration file.
type Config struct {
	Path     string   `yaml:"path"`
	Encoding string   `yaml:"encoding,omitempty"`
	Alphabet []string `yaml:"alphabet"`
	Verbose  bool     `yaml:"verbose"`
}

func defaultConfig() Config {
	return Config{
		Path:     ".",
		Alphabet: []string{"[0x0000,0x007f]"},
	}
}

// loadConfig reads the configuration at path. Without a path the default
// file is used when it exists.
func loadConfig(path string) (Config, error) {
	config := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return config, nil
}

// AlphaMap builds the alphabet listed in the configuration.
func (c Config) AlphaMap() (*datrie.AlphaMap, error) {
	am := datrie.NewAlphaMap()
	for _, s := range c.Alphabet {
		r, err := datrie.ParseRange(s)
		if err != nil {
			return nil, err
		}
		if err := am.AddRange(r.Begin, r.End); err != nil {
			return nil, err
		}
	}
	return am, nil
}
