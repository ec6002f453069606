// Package config holds the declarative monitoring configuration shared
// by the watchdog server and its region relays. The server loads and
// validates the YAML file at startup; relays receive the normalized
// form over the API and must interpret it identically.
package config

import (
	"fmt"
	"os"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/kongbytes/watchdog/probe"
)

const (
	// DefaultInterval is the region probe cadence when the config
	// does not set one.
	DefaultInterval = 5 * time.Second

	// DefaultThreshold is the number of consecutive adverse cycles
	// tolerated before a region or group transitions.
	DefaultThreshold = 3
)

// Config is the root of the monitoring tree: regions to probe and the
// alert mediums incidents fan out to.
type Config struct {
	Regions  []*Region      `yaml:"regions" json:"regions"`
	Alerting []*AlertMedium `yaml:"alerting,omitempty" json:"alerting,omitempty"`
}

// Region is a network vantage point covered by exactly one relay
// process.
type Region struct {
	Name      string        `yaml:"name" json:"name"`
	Interval  time.Duration `yaml:"-" json:"interval"`
	Threshold int           `yaml:"threshold" json:"threshold"`
	Groups    []*Group      `yaml:"groups" json:"groups"`

	// RawInterval carries the duration string ("5s", "1m") between
	// the YAML document and the parsed Interval.
	RawInterval string `yaml:"interval" json:"-"`
}

// Group bundles tests whose cycle outcomes are aggregated together. A
// group cycle is ok only if every test in the group succeeded.
type Group struct {
	Name      string   `yaml:"name" json:"name"`
	Threshold int      `yaml:"threshold" json:"threshold"`
	Mediums   Mediums  `yaml:"mediums,omitempty" json:"mediums,omitempty"`
	Tests     []string `yaml:"tests" json:"tests"`
}

// AlertMedium declares an alert sink that groups may reference by
// name. The medium field selects the adapter (telegram, spryng,
// webhook, script); credentials come from the environment.
type AlertMedium struct {
	Name   string `yaml:"name" json:"name"`
	Medium string `yaml:"medium" json:"medium"`
}

// Mediums accepts either a single YAML scalar or a sequence of medium
// names.
type Mediums []string

func (m *Mediums) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*m = Mediums{single}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*m = Mediums(many)
		return nil
	default:
		return fmt.Errorf("mediums must be a string or a list of strings")
	}
}

// Load reads, parses and validates the YAML configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a YAML document, applies defaults and validates the
// resulting tree.
func Parse(raw []byte) (*Config, error) {
	conf := &Config{}
	if err := yaml.Unmarshal(raw, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := conf.normalize(); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// normalize resolves duration strings and fills defaulted fields.
func (c *Config) normalize() error {
	for _, region := range c.Regions {
		if region == nil {
			continue
		}
		if region.RawInterval == "" {
			region.Interval = DefaultInterval
		} else {
			interval, err := time.ParseDuration(region.RawInterval)
			if err != nil {
				return fmt.Errorf("region %q: invalid interval %q: %w", region.Name, region.RawInterval, err)
			}
			region.Interval = interval
		}
		if region.Threshold == 0 {
			region.Threshold = DefaultThreshold
		}
		for _, group := range region.Groups {
			if group == nil {
				continue
			}
			if group.Threshold == 0 {
				group.Threshold = DefaultThreshold
			}
		}
	}
	return nil
}

// Validate checks the whole tree and accumulates every violation with
// the offending path.
func (c *Config) Validate() error {
	var mErr *multierror.Error

	if len(c.Regions) == 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("config must declare at least one region"))
	}

	mediums := make(map[string]struct{}, len(c.Alerting))
	for i, alert := range c.Alerting {
		if alert == nil || alert.Name == "" {
			mErr = multierror.Append(mErr, fmt.Errorf("alerting[%d]: medium name is required", i))
			continue
		}
		if _, exists := mediums[alert.Name]; exists {
			mErr = multierror.Append(mErr, fmt.Errorf("alerting[%s]: duplicate medium name", alert.Name))
		}
		mediums[alert.Name] = struct{}{}
	}

	seenRegions := make(map[string]struct{}, len(c.Regions))
	for _, region := range c.Regions {
		if region == nil {
			continue
		}
		if region.Name == "" {
			mErr = multierror.Append(mErr, fmt.Errorf("regions: region name is required"))
			continue
		}
		if _, exists := seenRegions[region.Name]; exists {
			mErr = multierror.Append(mErr, fmt.Errorf("regions[%s]: duplicate region name", region.Name))
		}
		seenRegions[region.Name] = struct{}{}

		if region.Interval <= 0 {
			mErr = multierror.Append(mErr, fmt.Errorf("regions[%s]: interval must be positive", region.Name))
		}
		if region.Threshold < 1 {
			mErr = multierror.Append(mErr, fmt.Errorf("regions[%s]: threshold must be at least 1", region.Name))
		}

		seenGroups := make(map[string]struct{}, len(region.Groups))
		for _, group := range region.Groups {
			if group == nil {
				continue
			}
			path := fmt.Sprintf("regions[%s].groups[%s]", region.Name, group.Name)

			if group.Name == "" {
				mErr = multierror.Append(mErr, fmt.Errorf("regions[%s].groups: group name is required", region.Name))
				continue
			}
			if _, exists := seenGroups[group.Name]; exists {
				mErr = multierror.Append(mErr, fmt.Errorf("%s: duplicate group name", path))
			}
			seenGroups[group.Name] = struct{}{}

			if group.Threshold < 1 {
				mErr = multierror.Append(mErr, fmt.Errorf("%s: threshold must be at least 1", path))
			}
			if len(group.Tests) == 0 {
				mErr = multierror.Append(mErr, fmt.Errorf("%s: at least one test is required", path))
			}
			for _, test := range group.Tests {
				if _, err := probe.Parse(test); err != nil {
					mErr = multierror.Append(mErr, fmt.Errorf("%s: %w", path, err))
				}
			}
			for _, medium := range group.Mediums {
				if _, known := mediums[medium]; !known {
					mErr = multierror.Append(mErr, fmt.Errorf("%s: medium %q is not declared under alerting", path, medium))
				}
			}
		}
	}

	return mErr.ErrorOrNil()
}

// Region returns the subtree for the named region, or nil.
func (c *Config) Region(name string) *Region {
	for _, region := range c.Regions {
		if region != nil && region.Name == name {
			return region
		}
	}
	return nil
}

// HasMedium reports whether any declared alert medium uses the given
// adapter kind.
func (c *Config) HasMedium(medium string) bool {
	for _, alert := range c.Alerting {
		if alert != nil && alert.Medium == medium {
			return true
		}
	}
	return false
}
