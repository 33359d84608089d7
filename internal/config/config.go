package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort         = "8000"
	DefaultInfluxBucket = "water_quality"
)

// Config holds the application's configuration.
type Config struct {
	Port           string
	AllowedOrigins []string

	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string
}

// MirrorEnabled reports whether readings should be mirrored to InfluxDB.
func (c Config) MirrorEnabled() bool {
	return c.InfluxDBURL != ""
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// LoadConfig loads the configuration from environment variables, after
// merging in a .env file when one is present.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:           getenv("PORT"),
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),
		InfluxDBURL:    getenv("INFLUXDB_URL"),
		InfluxDBToken:  getenv("INFLUXDB_TOKEN"),
		InfluxDBOrg:    getenv("INFLUXDB_ORG"),
		InfluxDBBucket: getenv("INFLUXDB_BUCKET"),
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.InfluxDBBucket == "" {
		cfg.InfluxDBBucket = DefaultInfluxBucket
	}

	set := 0
	for _, v := range []string{cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return Config{}, fmt.Errorf("InfluxDB configuration is incomplete. Please set INFLUXDB_URL, INFLUXDB_TOKEN, and INFLUXDB_ORG environment variables, or none of them")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
