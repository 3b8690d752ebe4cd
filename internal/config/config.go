package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/logging"
	"github.com/san-kum/robonav/internal/robot"
	"github.com/san-kum/robonav/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRobot       = "standard"
	DefaultMaxTicks    = 5000
	DefaultArenaWidth  = 300
	DefaultArenaHeight = 200
	DefaultStreamAddr  = "127.0.0.1:8080"
	DefaultDataDir     = "./data"
)

type Config struct {
	Robot      string         `yaml:"robot"`
	Integrator string         `yaml:"integrator"`
	Period     time.Duration  `yaml:"period"`
	Duration   float64        `yaml:"duration"`
	MaxTicks   int            `yaml:"max_ticks"`
	InitPose   dynamo.Pose    `yaml:"init_pose"`
	Target     dynamo.Target  `yaml:"target"`
	Arena      ArenaConfig    `yaml:"arena"`
	Log        logging.Config `yaml:"log"`
	Stream     StreamConfig   `yaml:"stream"`
	DataDir    string         `yaml:"data_dir"`
}

// ArenaConfig is the visible region in world units, with the origin at the
// bottom-left corner.
type ArenaConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Robot:      DefaultRobot,
		Integrator: "arc",
		Period:     sim.DefaultPeriod,
		Duration:   dynamo.DefaultDuration,
		MaxTicks:   DefaultMaxTicks,
		InitPose:   robot.DefaultPose,
		Target:     robot.DefaultTarget,
		Arena: ArenaConfig{
			Width:  DefaultArenaWidth,
			Height: DefaultArenaHeight,
		},
		Log: logging.DefaultConfig(),
		Stream: StreamConfig{
			Addr: DefaultStreamAddr,
		},
		DataDir: DefaultDataDir,
	}
}

// Load reads a yaml file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

func (c *Config) Validate() error {
	switch {
	case c.Robot == "":
		return fmt.Errorf("%w: robot is empty", dynamo.ErrInvalidConfig)
	case c.Period <= 0:
		return fmt.Errorf("%w: period must be positive, got %v", dynamo.ErrInvalidConfig, c.Period)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidConfig, c.Duration)
	case c.MaxTicks <= 0:
		return fmt.Errorf("%w: max_ticks must be positive, got %d", dynamo.ErrInvalidConfig, c.MaxTicks)
	case c.Arena.Width <= 0 || c.Arena.Height <= 0:
		return fmt.Errorf("%w: arena must be positive, got %dx%d", dynamo.ErrInvalidConfig, c.Arena.Width, c.Arena.Height)
	}
	return nil
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Log.Output = append([]string(nil), c.Log.Output...)
	return &cp
}

func (c *Config) Session() sim.SessionConfig {
	return sim.SessionConfig{
		Variant:    c.Robot,
		Period:     c.Period,
		Duration:   c.Duration,
		Integrator: c.Integrator,
		Pose:       c.InitPose,
		Target:     c.Target,
	}
}

func (c *Config) RunConfig() sim.RunConfig {
	return sim.RunConfig{MaxTicks: c.MaxTicks, StopOnArrival: true}
}
