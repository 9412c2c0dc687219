// Package config loads the YAML configuration shared by the hashing, policy
// and credential-store components.
//
//	log_level: info
//	log_format: text
//	bcrypt:
//	  cost: 12
//	  budget: 1ms
//	  initial_batch: 25
//	policy:
//	  min_length: 10
//	  require_digit: true
//	  require_punct: true
//	  reject_common: true
//	store:
//	  path: /var/lib/creds
//
// Keys left out keep their [Default] values.  Unknown keys are an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/hasbyte1/go-sliced-bcrypt/bcrypt"
	"github.com/hasbyte1/go-sliced-bcrypt/credentials"
	"github.com/hasbyte1/go-sliced-bcrypt/hashing"
	"github.com/hasbyte1/go-sliced-bcrypt/password"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid value")

// Config is the top-level configuration document.
type Config struct {
	LogLevel  string       `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"`
	Bcrypt    BcryptConfig `yaml:"bcrypt"`
	Policy    PolicyConfig `yaml:"policy"`
	Store     StoreConfig  `yaml:"store"`
}

// BcryptConfig holds the work factor and slicing knobs of the engine.
type BcryptConfig struct {
	Cost         int      `yaml:"cost"`
	Budget       Duration `yaml:"budget"`
	InitialBatch int      `yaml:"initial_batch"`
}

// PolicyConfig mirrors [password.Policy].
type PolicyConfig struct {
	MinLength    int  `yaml:"min_length"`
	RequireDigit bool `yaml:"require_digit"`
	RequirePunct bool `yaml:"require_punct"`
	RejectCommon bool `yaml:"reject_common"`
}

// StoreConfig selects where credential records live.
type StoreConfig struct {
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// Duration is a time.Duration written in YAML as a Go duration string
// ("1ms", "250us").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalid, s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	p := password.DefaultPolicy()
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Bcrypt: BcryptConfig{
			Cost:         bcrypt.DefaultCost,
			Budget:       Duration(bcrypt.DefaultBudget),
			InitialBatch: bcrypt.DefaultInitialBatch,
		},
		Policy: PolicyConfig{
			MinLength:    p.MinLength,
			RequireDigit: p.RequireDigit,
			RequirePunct: p.RequirePunct,
			RejectCommon: p.RejectCommon,
		},
		Store: StoreConfig{InMemory: true},
	}
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes data over [Default] and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if c.Store.Path != "" {
		c.Store.InMemory = false
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalid, c.LogFormat)
	}
	if c.Bcrypt.Cost < bcrypt.MinCost || c.Bcrypt.Cost > bcrypt.MaxCost {
		return fmt.Errorf("%w: bcrypt.cost %d must be in [%d, %d]", ErrInvalid, c.Bcrypt.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Bcrypt.Budget <= 0 {
		return fmt.Errorf("%w: bcrypt.budget must be positive", ErrInvalid)
	}
	if c.Bcrypt.InitialBatch < 1 {
		return fmt.Errorf("%w: bcrypt.initial_batch %d must be at least 1", ErrInvalid, c.Bcrypt.InitialBatch)
	}
	if c.Policy.MinLength < 0 {
		return fmt.Errorf("%w: policy.min_length %d must not be negative", ErrInvalid, c.Policy.MinLength)
	}
	if c.Store.Path == "" && !c.Store.InMemory {
		return fmt.Errorf("%w: store needs a path or in_memory", ErrInvalid)
	}
	return nil
}

// Logger builds a logger from log_level and log_format.
func (c Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	l := logrus.New()
	l.SetLevel(level)
	switch c.LogFormat {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("%w: log_format %q", ErrInvalid, c.LogFormat)
	}
	return l, nil
}

// BcryptOptions returns the hasher options.  log may be nil.
func (c Config) BcryptOptions(log logrus.FieldLogger) hashing.BcryptOptions {
	return hashing.BcryptOptions{
		Cost:         c.Bcrypt.Cost,
		Budget:       time.Duration(c.Bcrypt.Budget),
		InitialBatch: c.Bcrypt.InitialBatch,
		Logger:       log,
	}
}

// JobOptions returns the engine options for callers that build jobs
// directly.  log may be nil.
func (c Config) JobOptions(log logrus.FieldLogger) []bcrypt.Option {
	return []bcrypt.Option{
		bcrypt.WithBudget(time.Duration(c.Bcrypt.Budget)),
		bcrypt.WithInitialBatch(c.Bcrypt.InitialBatch),
		bcrypt.WithLogger(log),
	}
}

// PasswordPolicy returns the configured strength policy.
func (c Config) PasswordPolicy() password.Policy {
	return password.Policy{
		MinLength:    c.Policy.MinLength,
		RequireDigit: c.Policy.RequireDigit,
		RequirePunct: c.Policy.RequirePunct,
		RejectCommon: c.Policy.RejectCommon,
	}
}

// BadgerConfig returns the credential store settings.  log may be nil.
func (c Config) BadgerConfig(log logrus.FieldLogger) credentials.BadgerConfig {
	return credentials.BadgerConfig{
		Path:       c.Store.Path,
		InMemory:   c.Store.InMemory,
		SyncWrites: c.Store.SyncWrites,
		Logger:     log,
	}
}
