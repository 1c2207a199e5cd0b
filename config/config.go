package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Room and turn configuration
	Game GameConfig `json:"game"`

	// Procedural event engine configuration
	Rift RiftConfig `json:"rift"`

	// Narrator configuration
	Narrator NarratorConfig `json:"narrator"`
}

// ServerConfig holds HTTP server specific configuration
type ServerConfig struct {
	// Server port
	Port string `json:"port" env:"STORYCLASH_PORT"`

	// Log level (debug, info, warn, error)
	LogLevel string `json:"log_level" env:"STORYCLASH_LOG_LEVEL"`

	// Public base URL used for invite links and QR codes
	PublicURL string `json:"public_url" env:"STORYCLASH_PUBLIC_URL"`

	// Optional directory of JSON story trees overriding the built-ins
	StoryDir string `json:"story_dir" env:"STORYCLASH_STORY_DIR"`
}

// GameConfig holds room lifecycle and turn scheduling configuration
type GameConfig struct {
	// Sliding room TTL in minutes
	RoomTTLMinutes int `json:"room_ttl_minutes" env:"STORYCLASH_ROOM_TTL_MINUTES"`

	// Turn deadline in seconds once choices unlock
	TurnSeconds int `json:"turn_seconds" env:"STORYCLASH_TURN_SECONDS"`

	// Grace period in seconds before a disconnected active player times out
	DisconnectGraceSeconds int `json:"disconnect_grace_seconds" env:"STORYCLASH_DISCONNECT_GRACE_SECONDS"`

	// Player count bounds
	MinPlayers int `json:"min_players"`
	MaxPlayers int `json:"max_players"`

	// Number of mini-game rounds before the story phase
	MinigameRounds int `json:"minigame_rounds"`
}

// RiftConfig holds the tunable thresholds of the procedural event engine
type RiftConfig struct {
	// Minimum chaos before a scene reroute may fire
	RerouteChaosThreshold int `json:"reroute_chaos_threshold" env:"STORYCLASH_REROUTE_CHAOS"`

	// Minimum resolved step before a scene reroute may fire
	RerouteMinStep int `json:"reroute_min_step"`

	// Chaos added by a reroute
	RerouteChaosDelta int `json:"reroute_chaos_delta"`

	// Dominant genre power required for a genre surge
	SurgePowerThreshold int `json:"surge_power_threshold" env:"STORYCLASH_SURGE_POWER"`

	// Chaos added by a genre surge
	SurgeChaosDelta int `json:"surge_chaos_delta"`

	// Most-recent rift records retained per room
	HistoryLimit int `json:"history_limit"`
}

// NarratorConfig holds the optional generative narrator hook settings
type NarratorConfig struct {
	// Enables the injected line generator when one is registered
	GeneratorEnabled bool `json:"generator_enabled" env:"STORYCLASH_NARRATOR_GENERATOR"`

	// Deadline in milliseconds before falling back to local templates
	GeneratorDeadlineMS int `json:"generator_deadline_ms" env:"STORYCLASH_NARRATOR_DEADLINE_MS"`
}

// RoomTTL returns the sliding room TTL as a duration
func (c GameConfig) RoomTTL() time.Duration {
	return time.Duration(c.RoomTTLMinutes) * time.Minute
}

// TurnDuration returns the turn deadline as a duration
func (c GameConfig) TurnDuration() time.Duration {
	return time.Duration(c.TurnSeconds) * time.Second
}

// DisconnectGrace returns the disconnect grace period as a duration
func (c GameConfig) DisconnectGrace() time.Duration {
	return time.Duration(c.DisconnectGraceSeconds) * time.Second
}

// GeneratorDeadline returns the narrator hook deadline as a duration
func (c NarratorConfig) GeneratorDeadline() time.Duration {
	return time.Duration(c.GeneratorDeadlineMS) * time.Millisecond
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:      "8080",
			LogLevel:  "info",
			PublicURL: "http://localhost:8080",
		},
		Game: GameConfig{
			RoomTTLMinutes:         30,
			TurnSeconds:            30,
			DisconnectGraceSeconds: 10,
			MinPlayers:             3,
			MaxPlayers:             6,
			MinigameRounds:         3,
		},
		Rift: RiftConfig{
			RerouteChaosThreshold: 65,
			RerouteMinStep:        3,
			RerouteChaosDelta:     14,
			SurgePowerThreshold:   40,
			SurgeChaosDelta:       8,
			HistoryLimit:          20,
		},
		Narrator: NarratorConfig{
			GeneratorEnabled:    false,
			GeneratorDeadlineMS: 750,
		},
	}
}

// LoadConfig loads configuration from a file, creating it with defaults when
// missing, then applies environment variable overrides.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return config, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		file, err := os.Create(path)
		if err != nil {
			return config, err
		}
		defer file.Close()

		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(config); err != nil {
			return config, err
		}
	} else {
		file, err := os.Open(path)
		if err != nil {
			return config, err
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return config, err
		}
	}

	if err := env.Parse(&config); err != nil {
		return config, err
	}

	return config, nil
}
