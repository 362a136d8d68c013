// Package config loads the scheduler's YAML configuration: a base
// file plus environment-specific overrides, merged in the order given
// on the command line — the pattern used throughout the Peloton
// ecosystem's process entrypoints.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is the root configuration object for the scheduler process.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Storage   StorageConfig   `yaml:"storage"`
	Mesos     MesosConfig     `yaml:"mesos"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// SchedulerConfig holds the offer-pipeline's tunables.
type SchedulerConfig struct {
	// OfferQueueCapacity bounds the Offer Queue; 0 means unbounded.
	OfferQueueCapacity int `yaml:"offerQueueCapacity"`
	// AwaitProcessedTimeoutMS is the default awaitProcessed deadline.
	AwaitProcessedTimeoutMS int `yaml:"awaitProcessedTimeoutMs"`
	// FrameworkUninstall puts the entire framework into uninstall mode
	// on this run, rather than any individual service.
	FrameworkUninstall bool `yaml:"frameworkUninstall"`
}

// StorageConfig points at the embedded bbolt database backing the
// Spec Store and the framework-id record.
type StorageConfig struct {
	BoltPath string `yaml:"boltPath"`
}

// MesosConfig holds the resource-manager connection details.
type MesosConfig struct {
	Master      string `yaml:"master"`
	FrameworkName string `yaml:"frameworkName"`
	Role        string `yaml:"role"`
	Principal   string `yaml:"principal"`
}

// MetricsConfig configures the tally metrics scope.
type MetricsConfig struct {
	StatsdAddress string        `yaml:"statsdAddress"`
	Prefix        string        `yaml:"prefix"`
}

// Load reads and merges each file in paths, in order: later files
// override earlier ones field-by-field via repeated unmarshal onto
// the same struct.
func Load(paths []string) (*Config, error) {
	var cfg Config
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}
	if len(paths) == 0 {
		return nil, errors.New("at least one config file is required")
	}
	return &cfg, nil
}
