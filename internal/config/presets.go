package config

import (
	"sort"

	"github.com/san-kum/robonav/internal/dynamo"
)

type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"default": {
		Description: "standard robot from (100,100) facing east to (150,100)",
		apply:       func(*Config) {},
	},
	"behind": {
		Description: "target directly behind the robot",
		apply: func(c *Config) {
			c.Target = dynamo.Target{X: 50, Y: 100}
		},
	},
	"diagonal": {
		Description: "target up and to the right",
		apply: func(c *Config) {
			c.Target = dynamo.Target{X: 200, Y: 180}
		},
	},
	"nimble": {
		Description: "nimble robot turning back to a target on its left",
		apply: func(c *Config) {
			c.Robot = "nimble"
			c.Target = dynamo.Target{X: 60, Y: 160}
		},
	},
	"close": {
		Description: "target inside the standard robot's turning circle",
		apply: func(c *Config) {
			c.Target = dynamo.Target{X: 110, Y: 120}
		},
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
