package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/atlasdatatech/vectortile"
)

// Config holds the CLI settings. Precedence: flags, environment, YAML file,
// defaults.
type Config struct {
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	Workers       int    `yaml:"workers"`
	CollectErrors bool   `yaml:"collect_errors"`
	Projection    string `yaml:"projection"`
	Metrics       bool   `yaml:"metrics"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:   "info",
		LogFormat:  "text",
		Workers:    vectortile.DefaultWorkers(),
		Projection: "EPSG:4326",
	}
}

// loadConfig reads the optional YAML file, then a .env file if present,
// then the process environment.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warningf("load .env: %s", err)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("GOTILER_PROJECTION"); v != "" {
		cfg.Projection = v
	}
	if v := os.Getenv("GOTILER_METRICS"); v != "" {
		cfg.Metrics, _ = strconv.ParseBool(v)
	}
	return cfg, nil
}

func setupLogger(cfg Config) {
	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warningf("unknown log level %q, using info", cfg.LogLevel)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	if strings.ToLower(cfg.LogFormat) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
