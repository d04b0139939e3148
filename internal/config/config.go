// Package config loads settings from defaults, an optional yaml file,
// an optional .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	DataURL string `yaml:"data_url"`
	Output  string `yaml:"output"`
	Lang    string `yaml:"lang"`
	Legend  bool   `yaml:"legend"`

	Map    MapConfig    `yaml:"map"`
	Marker MarkerConfig `yaml:"marker"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Line   LineConfig   `yaml:"line"`
}

type MapConfig struct {
	Center      [2]float64 `yaml:"center"` // lat, lng
	Zoom        int        `yaml:"zoom"`
	TileURL     string     `yaml:"tile_url"`
	Attribution string     `yaml:"attribution"`
}

type MarkerConfig struct {
	// IconBase switches markers to images at <icon_base>/<color>.png.
	IconBase string `yaml:"icon_base"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	StaticDir   string   `yaml:"static_dir"`
}

type StoreConfig struct {
	Driver   string `yaml:"driver"` // memory, mongo or file
	MongoURI string `yaml:"mongo_uri"`
	MongoDB  string `yaml:"mongo_db"`
	File     string `yaml:"file"`
}

type LineConfig struct {
	ChannelSecret      string `yaml:"channel_secret"`
	ChannelAccessToken string `yaml:"channel_access_token"`
}

// Default returns the built-in configuration: a Tokyo-centered map with
// OpenStreetMap tiles reading from a local /data endpoint.
func Default() Config {
	return Config{
		DataURL: "http://localhost:8080/data",
		Output:  "reports.html",
		Lang:    "ja",
		Legend:  true,
		Map: MapConfig{
			Center:      [2]float64{35.6895, 139.6917},
			Zoom:        13,
			TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: "&copy; OpenStreetMap contributors",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
			StaticDir:   "static",
		},
		Store: StoreConfig{
			Driver:  "memory",
			MongoDB: "damage_map",
		},
	}
}

// Load builds the configuration. path may be empty; a missing .env is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataURL = getenv("DATA_URL", c.DataURL)
	c.Lang = getenv("MAP_LANG", c.Lang)
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	c.Store.Driver = getenv("STORE_DRIVER", c.Store.Driver)
	c.Store.MongoURI = getenv("MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDB = getenv("MONGO_DB", c.Store.MongoDB)
	c.Store.File = getenv("REPORTS_FILE", c.Store.File)
	c.Line.ChannelSecret = getenv("LINE_CHANNEL_SECRET", c.Line.ChannelSecret)
	c.Line.ChannelAccessToken = getenv("LINE_CHANNEL_ACCESS_TOKEN", c.Line.ChannelAccessToken)
	if v := os.Getenv("MAP_LEGEND"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Legend = b
		}
	}
}

// Validate checks the values a bad file or env var could break.
func (c Config) Validate() error {
	lat, lng := c.Map.Center[0], c.Map.Center[1]
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("map center out of range: [%v, %v]", lat, lng)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		return fmt.Errorf("map zoom out of range: %d", c.Map.Zoom)
	}
	switch strings.ToLower(c.Store.Driver) {
	case "memory", "file", "mongo":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if strings.EqualFold(c.Store.Driver, "file") && c.Store.File == "" {
		return errors.New("store driver file needs store.file or REPORTS_FILE")
	}
	if strings.EqualFold(c.Store.Driver, "mongo") && c.Store.MongoURI == "" {
		return errors.New("store driver mongo needs store.mongo_uri or MONGO_URI")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
