// Package config loads the collision construction options from a YAML file
// with NARROWPHASE_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/collision"
	"narrowphase/internal/softbody"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "NARROWPHASE_"

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	Collision CollisionConfig `yaml:"collision" envPrefix:"COLLISION_"`
	SoftBody  SoftBodyConfig  `yaml:"soft_body" envPrefix:"SOFT_BODY_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOG_"`
}

// CollisionConfig mirrors collision.ConstructionInfo plus multipoint tuning
type CollisionConfig struct {
	UseEPA               bool             `yaml:"use_epa" env:"USE_EPA"`
	SphereBox            bool             `yaml:"sphere_box" env:"SPHERE_BOX"`
	StackAllocatorSize   int              `yaml:"stack_allocator_size" env:"STACK_ALLOCATOR_SIZE"`
	ManifoldPoolSize     int              `yaml:"manifold_pool_size" env:"MANIFOLD_POOL_SIZE"`
	AlgorithmPoolSize    int              `yaml:"algorithm_pool_size" env:"ALGORITHM_POOL_SIZE"`
	CustomMaxElementSize int              `yaml:"custom_max_element_size" env:"CUSTOM_MAX_ELEMENT_SIZE"`
	ConvexConvex         MultipointConfig `yaml:"convex_convex" envPrefix:"CONVEX_CONVEX_"`
	ConvexPlane          MultipointConfig `yaml:"convex_plane" envPrefix:"CONVEX_PLANE_"`
}

type MultipointConfig struct {
	Iterations int `yaml:"iterations" env:"ITERATIONS"`
	Threshold  int `yaml:"threshold" env:"THRESHOLD"`
}

type SoftBodyConfig struct {
	Enabled           bool `yaml:"enabled" env:"ENABLED"`
	ConcaveCollisions bool `yaml:"concave_collisions" env:"CONCAVE_COLLISIONS"`
}

type LoggingConfig struct {
	Verbose bool `yaml:"verbose" env:"VERBOSE"`
}

func DefaultConfig() *Config {
	info := collision.DefaultConstructionInfo()
	return &Config{
		Collision: CollisionConfig{
			UseEPA:             info.UseEpaPenetrationAlgorithm,
			StackAllocatorSize: info.DefaultStackAllocatorSize,
			ManifoldPoolSize:   info.DefaultMaxPersistentManifoldPoolSize,
			AlgorithmPoolSize:  info.DefaultMaxCollisionAlgorithmPoolSize,
			ConvexConvex: MultipointConfig{
				Iterations: algorithm.DefaultConvexMultipoint.Iterations,
				Threshold:  algorithm.DefaultConvexMultipoint.MinimumPointsThreshold,
			},
			ConvexPlane: MultipointConfig{
				Iterations: algorithm.DefaultPlaneMultipoint.Iterations,
				Threshold:  algorithm.DefaultPlaneMultipoint.MinimumPointsThreshold,
			},
		},
		SoftBody: SoftBodyConfig{
			ConcaveCollisions: true,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file or empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overrides target fields from NARROWPHASE_ variables that are set
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	cc := c.Collision
	for name, v := range map[string]int{
		"stack_allocator_size": cc.StackAllocatorSize,
		"manifold_pool_size":   cc.ManifoldPoolSize,
		"algorithm_pool_size":  cc.AlgorithmPoolSize,
	} {
		if v <= 0 {
			return fmt.Errorf("collision.%s must be positive, got %d: %w", name, v, ErrInvalidConfig)
		}
	}
	if cc.CustomMaxElementSize < 0 {
		return fmt.Errorf("collision.custom_max_element_size must not be negative: %w", ErrInvalidConfig)
	}
	for name, mp := range map[string]MultipointConfig{"convex_convex": cc.ConvexConvex, "convex_plane": cc.ConvexPlane} {
		if mp.Iterations < 0 || mp.Threshold < 0 {
			return fmt.Errorf("collision.%s multipoint must not be negative: %w", name, ErrInvalidConfig)
		}
	}
	return nil
}

// ConstructionInfo maps the collision section onto construction options
func (c *Config) ConstructionInfo() collision.ConstructionInfo {
	info := collision.DefaultConstructionInfo()
	info.UseEpaPenetrationAlgorithm = c.Collision.UseEPA
	info.EnableSphereBox = c.Collision.SphereBox
	info.DefaultStackAllocatorSize = c.Collision.StackAllocatorSize
	info.DefaultMaxPersistentManifoldPoolSize = c.Collision.ManifoldPoolSize
	info.DefaultMaxCollisionAlgorithmPoolSize = c.Collision.AlgorithmPoolSize
	info.CustomCollisionAlgorithmMaxElementSize = c.Collision.CustomMaxElementSize
	return info
}

// Build creates the configuration described by c, with the soft body rules
// when enabled, and applies the multipoint settings
func (c *Config) Build(logger *zap.Logger) (*collision.Configuration, error) {
	opts := []collision.Option{collision.WithLogger(logger)}
	if c.SoftBody.Enabled {
		rules := softbody.NewRules(softbody.EnableConcaveCollisions(c.SoftBody.ConcaveCollisions))
		opts = append(opts, collision.WithRuleSet(rules))
	}

	cfg, err := collision.New(c.ConstructionInfo(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create collision configuration: %w", err)
	}
	if err := c.Apply(cfg); err != nil {
		cfg.Close()
		return nil, err
	}
	return cfg, nil
}

// Apply sets the multipoint tuning of both tunable pair kinds
func (c *Config) Apply(cfg *collision.Configuration) error {
	cc := c.Collision
	if err := cfg.SetMultipointIterations(collision.PairConvexConvex, cc.ConvexConvex.Iterations, cc.ConvexConvex.Threshold); err != nil {
		return err
	}
	return cfg.SetMultipointIterations(collision.PairConvexPlane, cc.ConvexPlane.Iterations, cc.ConvexPlane.Threshold)
}
