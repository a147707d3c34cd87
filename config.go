package main

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds server and game tuning. Defaults match the original
// arena; a TOML file or PACMAN_* environment variables override them.
type Config struct {
	Addr      string
	ClientDir string
	DBPath    string

	FieldWidth   float64
	FieldHeight  float64
	PacmanRadius float64
	PointRadius  float64
	TotalPoints  int
	BaseSpeed    float64 // px/s, halved while slowed

	DefaultDuration int           // seconds, used when the first player picks none
	CountdownDelay  time.Duration // grace window between start and startedAt
	SlowDuration    time.Duration // negative-coin debuff
	MaxMoveDelta    time.Duration // dt clamp per accepted move

	NormalRefillBelow int // spawn a batch when live normal coins drop under this
	NormalRefillBatch int
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("client_dir", "../client")
	v.SetDefault("db_path", "pacman.db")
	v.SetDefault("field_width", 800)
	v.SetDefault("field_height", 600)
	v.SetDefault("pacman_radius", 20)
	v.SetDefault("point_radius", 8)
	v.SetDefault("total_points", 30)
	v.SetDefault("base_speed", 80)
	v.SetDefault("default_duration", 60)
	v.SetDefault("countdown_delay", "4s")
	v.SetDefault("slow_duration", "2s")
	v.SetDefault("max_move_delta", "200ms")
	v.SetDefault("normal_refill_below", 10)
	v.SetDefault("normal_refill_batch", 3)
}

// LoadConfig reads tuning from an optional TOML file ("pacman.toml" in
// the working directory, or an explicit path) plus PACMAN_* env vars.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setConfigDefaults(v)
	v.SetEnvPrefix("PACMAN")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("pacman")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	return configFromViper(v), nil
}

func configFromViper(v *viper.Viper) *Config {
	return &Config{
		Addr:              v.GetString("addr"),
		ClientDir:         v.GetString("client_dir"),
		DBPath:            v.GetString("db_path"),
		FieldWidth:        v.GetFloat64("field_width"),
		FieldHeight:       v.GetFloat64("field_height"),
		PacmanRadius:      v.GetFloat64("pacman_radius"),
		PointRadius:       v.GetFloat64("point_radius"),
		TotalPoints:       v.GetInt("total_points"),
		BaseSpeed:         v.GetFloat64("base_speed"),
		DefaultDuration:   v.GetInt("default_duration"),
		CountdownDelay:    v.GetDuration("countdown_delay"),
		SlowDuration:      v.GetDuration("slow_duration"),
		MaxMoveDelta:      v.GetDuration("max_move_delta"),
		NormalRefillBelow: v.GetInt("normal_refill_below"),
		NormalRefillBatch: v.GetInt("normal_refill_batch"),
	}
}

// DefaultConfig returns the built-in tuning without touching disk.
func DefaultConfig() *Config {
	v := viper.New()
	setConfigDefaults(v)
	return configFromViper(v)
}

// payload converts to the wire shape the client merges into its own
// tuning object.
func (c *Config) payload() GameConfigPayload {
	return GameConfigPayload{
		FieldWidth:   c.FieldWidth,
		FieldHeight:  c.FieldHeight,
		PacmanRadius: c.PacmanRadius,
		PointRadius:  c.PointRadius,
		PointsTotal:  c.TotalPoints,
		// Client speed is px per 50ms input tick.
		PacmanSpeed: c.BaseSpeed / 20,
	}
}
