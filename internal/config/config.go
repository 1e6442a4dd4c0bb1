package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/SwarupVishwas18/char-chitti/internal/domain"
)

// RoomConfig holds the defaults applied to newly created rooms.
type RoomConfig struct {
	DefaultRoomName   string   `json:"default_room_name"`
	DefaultMaxPlayers int      `json:"default_max_players"`
	DefaultEntities   []string `json:"default_entities"`
	DefaultPassMode   string   `json:"default_pass_mode"`
	// RejoinTokenTTLSeconds bounds how long a disconnected player can
	// re-bind to their retained record.
	RejoinTokenTTLSeconds int `json:"rejoin_token_ttl_seconds"`
}

var (
	cfg      *RoomConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadRoomConfig loads the room configuration from the given path.
func LoadRoomConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read room config: %w", err)
			return
		}

		var c RoomConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal room config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// DefaultSettings returns the room settings applied at room creation,
// falling back to built-in defaults when no config file was loaded.
func DefaultSettings() domain.Settings {
	settings := domain.Settings{
		RoomName:    "Char-Chitti Room",
		MaxPlayers:  4,
		EntityNames: []string{"Lion", "Tiger", "Elephant", "Monkey"},
		PassMode:    domain.PassModeManual,
	}

	if cfg == nil {
		return settings
	}

	if cfg.DefaultRoomName != "" {
		settings.RoomName = cfg.DefaultRoomName
	}
	if cfg.DefaultMaxPlayers >= domain.MinPlayersPerRoom && cfg.DefaultMaxPlayers <= domain.MaxPlayersPerRoom {
		settings.MaxPlayers = cfg.DefaultMaxPlayers
	}
	if len(cfg.DefaultEntities) >= domain.MinEntityNames {
		settings.EntityNames = append([]string{}, cfg.DefaultEntities...)
	}
	if cfg.DefaultPassMode == string(domain.PassModeAuto) {
		settings.PassMode = domain.PassModeAuto
	}

	return settings
}

// RejoinTokenTTLSeconds returns the rejoin token lifetime.
func RejoinTokenTTLSeconds() int {
	if cfg == nil || cfg.RejoinTokenTTLSeconds <= 0 {
		return 3600
	}
	return cfg.RejoinTokenTTLSeconds
}
