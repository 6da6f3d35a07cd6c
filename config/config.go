// Package config loads the trainer settings from defaults, an optional YAML
// file and EXPIT_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"expit/meta"
	"expit/model"

	"github.com/spf13/viper"
)

type Config struct {
	Iterations         int           `mapstructure:"iterations" yaml:"iterations"`
	IterationSize      int           `mapstructure:"iteration_size" yaml:"iteration_size"`
	SearchSize         int           `mapstructure:"search_size" yaml:"search_size"`
	ExampleSearchSize  int           `mapstructure:"example_search_size" yaml:"example_search_size"`
	Temperature        float64       `mapstructure:"temperature" yaml:"temperature"`
	ArenaGames         int           `mapstructure:"arena_games" yaml:"arena_games"`
	AcceptMargin       float64       `mapstructure:"accept_margin" yaml:"accept_margin"`
	LearningRate       float64       `mapstructure:"learning_rate" yaml:"learning_rate"`
	MaxData            int           `mapstructure:"max_data" yaml:"max_data"`
	StallTimeout       time.Duration `mapstructure:"stall_timeout" yaml:"stall_timeout"`
	SelfPlayCheckpoint string        `mapstructure:"self_play_checkpoint" yaml:"self_play_checkpoint"`
	OutputDir          string        `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
}

var defaults = map[string]any{
	"iterations":           10,
	"iteration_size":       100,
	"search_size":          100,
	"example_search_size":  meta.EXAMPLE_SEARCH_SIZE,
	"temperature":          meta.SELF_PLAY_TEMPERATURE,
	"arena_games":          meta.ARENA_GAMES,
	"accept_margin":        meta.ACCEPT_MARGIN,
	"learning_rate":        0.5,
	"max_data":             100_000,
	"stall_timeout":        time.Duration(0),
	"self_play_checkpoint": model.Train.String(),
	"output_dir":           "experiments/training",
	"log_level":            "info",
}

// Load reads the configuration. An empty path skips the file.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("EXPIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	var errs []error
	for _, field := range []struct {
		key   string
		value int
	}{
		{"iterations", c.Iterations},
		{"iteration_size", c.IterationSize},
		{"search_size", c.SearchSize},
		{"example_search_size", c.ExampleSearchSize},
		{"arena_games", c.ArenaGames},
		{"max_data", c.MaxData},
	} {
		if field.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", field.key, field.value))
		}
	}
	if c.Temperature < 0 {
		errs = append(errs, fmt.Errorf("temperature cannot be negative, got %v", c.Temperature))
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		errs = append(errs, fmt.Errorf("learning_rate must be in (0, 1], got %v", c.LearningRate))
	}
	if c.StallTimeout < 0 {
		errs = append(errs, fmt.Errorf("stall_timeout cannot be negative, got %s", c.StallTimeout))
	}
	if _, err := c.Checkpoint(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Checkpoint answering batched self-play evaluations.
func (c Config) Checkpoint() (model.Checkpoint, error) {
	return model.ParseCheckpoint(c.SelfPlayCheckpoint)
}
