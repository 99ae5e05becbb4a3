package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownOrdering = errors.New("unknown ordering strategy")
	ErrUnknownBackend  = errors.New("unknown storage backend")
)

type Config struct {
	Contraction ContractionOptions `yaml:"contraction"`
	Query       QueryOptions       `yaml:"query"`
	Storage     StorageOptions     `yaml:"storage"`
	Server      ServerOptions      `yaml:"server"`
	Profile     ProfileOptions     `yaml:"profile"`
}

type ContractionOptions struct {
	MaxSettledNodes int          `yaml:"max-settled-nodes"`
	MaxHops         int          `yaml:"max-hops"`
	Ordering        OrderingType `yaml:"ordering"`
	Parallel        bool         `yaml:"parallel"`
	Workers         int          `yaml:"workers"`
	Policy          struct {
		EdgeDifference      float64 `yaml:"edge-difference"`
		ContractedNeighbors float64 `yaml:"contracted-neighbors"`
		Depth               float64 `yaml:"depth"`
		OriginalEdges       float64 `yaml:"original-edges"`
	} `yaml:"policy"`
}

type QueryOptions struct {
	MaxSettledNodes int           `yaml:"max-settled-nodes"`
	Timeout         time.Duration `yaml:"timeout"`
	UnpackCacheSize int           `yaml:"unpack-cache-size"`
	Workers         int           `yaml:"workers"`
}

type StorageOptions struct {
	Backend BackendType `yaml:"backend"`
	Path    string      `yaml:"path"`
	H3Path  string      `yaml:"h3-path"`
}

type ServerOptions struct {
	Addr string `yaml:"addr"`
}

type ProfileOptions struct {
	// speeds in km/h per highway value, overriding the built in table
	Speeds       map[string]float64 `yaml:"speeds"`
	SpeedFactor  float64            `yaml:"speed-factor"`
	DefaultSpeed float64            `yaml:"default-speed"`
}

type OrderingType string

const (
	LAZY  OrderingType = "lazy"
	EAGER OrderingType = "eager"
)

func (o *OrderingType) UnmarshalYAML(value *yaml.Node) error {
	switch OrderingType(value.Value) {
	case LAZY, EAGER:
		*o = OrderingType(value.Value)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOrdering, value.Value)
	}
}

type BackendType string

const (
	BADGER BackendType = "badger"
	PEBBLE BackendType = "pebble"
)

func (b *BackendType) UnmarshalYAML(value *yaml.Node) error {
	switch BackendType(value.Value) {
	case BADGER, PEBBLE:
		*b = BackendType(value.Value)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, value.Value)
	}
}

func Default() Config {
	var cfg Config
	cfg.Contraction.MaxSettledNodes = 500
	cfg.Contraction.MaxHops = 5
	cfg.Contraction.Ordering = LAZY
	cfg.Contraction.Workers = 4
	cfg.Contraction.Policy.EdgeDifference = 1
	cfg.Contraction.Policy.ContractedNeighbors = 2
	cfg.Contraction.Policy.Depth = 1

	cfg.Query.UnpackCacheSize = 4096
	cfg.Query.Timeout = 5 * time.Second
	cfg.Query.Workers = 4

	cfg.Storage.Backend = BADGER
	cfg.Storage.Path = "./data/ch"
	cfg.Storage.H3Path = "./data/h3"

	cfg.Server.Addr = ":5000"

	cfg.Profile.Speeds = map[string]float64{}
	cfg.Profile.SpeedFactor = 1
	cfg.Profile.DefaultSpeed = 35
	return cfg
}

// ReadConfig reads the yaml file on top of Default. fields missing from the file keep their default.
func ReadConfig(file string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(file)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", file, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", file, err)
	}
	return cfg, nil
}
