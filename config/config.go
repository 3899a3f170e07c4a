// Package config loads the ambient options of the exporter from the environment.
//
// A .env file in the working directory is loaded first if it exists, so the same
// variables can be kept next to a cron job definition.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Options holds the settings that are not part of a single batch invocation.
type Options struct {
	// Runtime selects how exporters are launched: 'process' or 'docker'.
	Runtime string `env:"EXPORT_RUNTIME" envDefault:"process"`

	// ExporterDir is the directory holding the exporter executables for the process runtime.
	ExporterDir string `env:"EXPORTER_DIR" envDefault:"exporters"`

	// Docker is the docker CLI used by the docker runtime.
	Docker string `env:"DOCKER_BINARY" envDefault:"docker"`

	// Timeout bounds a single exporter run. Zero waits indefinitely.
	Timeout time.Duration `env:"EXPORT_TIMEOUT" envDefault:"0s"`

	// ResultPrefix is prepended to the control sheet title to name the report sheet.
	ResultPrefix string `env:"RESULT_PREFIX" envDefault:"result_"`

	MoodleURL string `env:"MOODLE_URL" envDefault:"https://e.moevm.info"`
	StepikURL string `env:"STEPIK_URL" envDefault:"https://stepik.org:443/api"`

	YandexDiskURL   string `env:"YADISK_URL" envDefault:"https://cloud-api.yandex.net/v1/disk"`
	YandexDiskToken string `env:"YADISK_TOKEN"`

	Log LogOptions
}

// LogOptions configures the logger. A non-empty File enables rotated file logging.
type LogOptions struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"30"`
}

// Load reads the optional .env file and parses the environment.
func Load() (Options, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Options{}, fmt.Errorf("load .env file (%w)", err)
		}
	}

	var options Options
	if err := env.Parse(&options); err != nil {
		return options, fmt.Errorf("parse environment (%w)", err)
	}

	options.Sanitize()

	return options, nil
}

// Sanitize normalises option values.
func (o *Options) Sanitize() {
	o.Runtime = strings.ToLower(strings.TrimSpace(o.Runtime))
	o.Log.Level = strings.ToLower(strings.TrimSpace(o.Log.Level))

	if o.Timeout < 0 {
		o.Timeout = 0
	}

	if o.Log.MaxSize <= 0 {
		o.Log.MaxSize = 10
	}
}

// Validate rejects option values that cannot be used.
func (o *Options) Validate() error {
	switch o.Runtime {
	case "process", "docker":
	default:
		return fmt.Errorf("invalid EXPORT_RUNTIME '%v' - expected 'process' or 'docker'", o.Runtime)
	}

	if strings.TrimSpace(o.ResultPrefix) == "" {
		return fmt.Errorf("RESULT_PREFIX must not be empty")
	}

	return nil
}
