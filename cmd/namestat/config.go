package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/namestat/pkg/jsonstat"
	"github.com/hazyhaar/namestat/pkg/names"
	"github.com/hazyhaar/namestat/pkg/pipeline"
	"github.com/hazyhaar/namestat/pkg/ssb"
	"github.com/hazyhaar/namestat/pkg/store"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr          string       `yaml:"addr"`
	LogLevel      string       `yaml:"log_level"`
	Database      store.Config `yaml:"database"`
	Source        sourceConfig `yaml:"source"`
	ReferenceFile string       `yaml:"reference_file"`
	Top           int          `yaml:"top"`
}

type sourceConfig struct {
	URL              string            `yaml:"url"`
	GenderDimension  string            `yaml:"gender_dimension"`
	MeasureDimension string            `yaml:"measure_dimension"`
	Measure          string            `yaml:"measure"`
	TimeDimension    string            `yaml:"time_dimension"`
	NameDimension    string            `yaml:"name_dimension"`
	Partitions       map[string]string `yaml:"partitions"`
	Years            []string          `yaml:"years"`
	Timeout          time.Duration     `yaml:"timeout"`
	CheckInterval    time.Duration     `yaml:"check_interval"`
}

func defaultConfig() config {
	src := ssb.DefaultConfig()
	var years []string
	for y := 2013; y <= 2024; y++ {
		years = append(years, fmt.Sprint(y))
	}
	return config{
		Addr:     ":8420",
		LogLevel: "info",
		Database: store.Config{Driver: store.DriverSQLite, DSN: "namestat.db"},
		Source: sourceConfig{
			URL:              src.URL,
			GenderDimension:  src.GenderDimension,
			MeasureDimension: src.MeasureDimension,
			Measure:          src.Measure,
			TimeDimension:    jsonstat.DefaultLayout.Time,
			NameDimension:    jsonstat.DefaultLayout.Name,
			Partitions:       map[string]string{"boy": "1", "girl": "2"},
			Years:            years,
			CheckInterval:    6 * time.Hour,
		},
		Top: pipeline.DefaultTopN,
	}
}

// readConfig returns the defaults overlaid with the file at path. A missing
// file is not an error; found reports whether it existed.
func readConfig(path string) (cfg config, found bool, err error) {
	cfg = defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, false, nil
		}
		return cfg, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, true, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, true, err
	}
	return cfg, true, nil
}

func (c config) validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if c.Top < 0 {
		return fmt.Errorf("top must not be negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	for g := range c.Source.Partitions {
		if _, err := names.ParseGender(g); err != nil {
			return fmt.Errorf("source.partitions: %w", err)
		}
	}
	return nil
}

func (c config) ssbConfig() ssb.Config {
	sc := ssb.DefaultConfig()
	sc.URL = c.Source.URL
	sc.GenderDimension = c.Source.GenderDimension
	sc.MeasureDimension = c.Source.MeasureDimension
	sc.Measure = c.Source.Measure
	sc.TimeDimension = c.Source.TimeDimension
	if len(c.Source.Partitions) > 0 {
		sc.Partitions = make(map[names.Gender]string, len(c.Source.Partitions))
		for g, code := range c.Source.Partitions {
			gender, _ := names.ParseGender(g)
			sc.Partitions[gender] = code
		}
	}
	return sc
}

func (c config) layout() jsonstat.Layout {
	return jsonstat.Layout{Time: c.Source.TimeDimension, Name: c.Source.NameDimension}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", s)
}

// loadConfig reads the config and builds the logger, exiting on error.
func loadConfig(path string) (config, *slog.Logger) {
	cfg, found, err := readConfig(path)
	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if err != nil {
		logger.Error("load config", "path", path, "error", err)
		os.Exit(1)
	}
	if !found {
		logger.Info("no config file, using defaults", "path", path)
	}
	return cfg, logger
}
