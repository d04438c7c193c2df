package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/soapsort/internal/soap"
)

const (
	DefaultGenerator = "shuffled"
	DefaultSize      = 8
	DefaultBeta      = soap.DefaultBeta
	DefaultThreshold = soap.DefaultThreshold
)

type Config struct {
	Energy          float64     `yaml:"energy"`
	Beta            float64     `yaml:"beta"`
	Threshold       float64     `yaml:"threshold"`
	MaxInteractions int         `yaml:"max_interactions"`
	Seed            int64       `yaml:"seed"`
	Input           InputConfig `yaml:"input"`
}

// InputConfig selects the array to sort. Explicit values win over the
// generator.
type InputConfig struct {
	Generator string    `yaml:"generator"`
	Size      int       `yaml:"size"`
	Values    []float64 `yaml:"values,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Beta:      DefaultBeta,
		Threshold: DefaultThreshold,
		Input: InputConfig{
			Generator: DefaultGenerator,
			Size:      DefaultSize,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Sort returns the sorter parameters carried by the file.
func (c *Config) Sort() soap.Config {
	return soap.Config{
		Energy:          c.Energy,
		Beta:            c.Beta,
		Threshold:       c.Threshold,
		MaxInteractions: c.MaxInteractions,
	}
}
