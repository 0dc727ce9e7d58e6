// Package config holds the CLI configuration. Values come from the built-in
// defaults, an optional yaml file and MULTIBIT_ prefixed environment variables,
// in that order of precedence (last wins).
package config

import (
	"github.com/rs/zerolog"
)

type LogFormat int

const (
	LogTextFormat LogFormat = iota
	LogJSONFormat
)

func (f LogFormat) String() string {
	if f == LogJSONFormat {
		return "json"
	}
	return "text"
}

type LoggingConfig struct {
	Format LogFormat     `koanf:"format,string"`
	Level  zerolog.Level `koanf:"level,string"`
}

type BenchmarkConfig struct {
	Strides []int `koanf:"strides" validate:"required,min=1,dive,oneof=1 2 4 8"`
}

type Configuration struct {
	PrefixFile    string          `koanf:"prefix_file"    validate:"required"`
	OutputDir     string          `koanf:"output_dir"     validate:"required"`
	DefaultStride int             `koanf:"default_stride" validate:"oneof=1 2 4 8"`
	ProgressEvery int             `koanf:"progress_every" validate:"min=1"`
	Benchmark     BenchmarkConfig `koanf:"benchmark"`
	Log           LoggingConfig   `koanf:"log"`
}

func Default() Configuration {
	return Configuration{
		PrefixFile:    "prefix-list.txt",
		OutputDir:     ".",
		DefaultStride: 4,
		ProgressEvery: 10000,
		Benchmark: BenchmarkConfig{
			Strides: []int{1, 2, 4, 8},
		},
		Log: LoggingConfig{
			Format: LogTextFormat,
			Level:  zerolog.InfoLevel,
		},
	}
}
