package config

import (
	"flag"
	"log"
	"os"
	"time"

	"class-panel/internal/lecture"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env             string            `yaml:"env" env:"ENV" env-default:"local"`
	Course          string            `yaml:"course" env:"COURSE"`
	Segments        []lecture.Segment `yaml:"segments"`
	RefreshInterval time.Duration     `yaml:"refresh_interval" env:"REFRESH_INTERVAL" env-default:"1s"`
	RedisAddr       string            `yaml:"redis_addr" env:"REDIS_ADDR"`
	HTTPServer      `yaml:"http_server"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

const defaultConfigPath = "./config/local.yaml"

func MustLoad() *Config {
	// a missing .env is fine, the process environment may already be set
	_ = godotenv.Load()

	configPath := fetchConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return cfg
}

// Load reads the YAML file at path, applies env overrides and defaults, and
// normalizes the segment plan.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	cfg.Segments = lecture.NormalizeSegments(cfg.Segments)
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Second
	}

	return &cfg, nil
}

// fetchConfigPath: -config flag > CONFIG_PATH env > default.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = defaultConfigPath
	}

	return res
}
