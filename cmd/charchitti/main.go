package main

import (
	"os"
	"time"

	"github.com/SwarupVishwas18/char-chitti/internal/config"
	"github.com/SwarupVishwas18/char-chitti/internal/ports/ws"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log := zerolog.New(output).With().Timestamp().Logger()

	configPath := os.Getenv("CHARCHITTI_CONFIG")
	if configPath == "" {
		configPath = "data/room_config.json"
	}
	if err := config.LoadRoomConfig(configPath); err != nil {
		log.Warn().Err(err).Msg("could not load room config, using defaults")
	}

	secret := []byte(os.Getenv("CHARCHITTI_REJOIN_SECRET"))
	if len(secret) == 0 {
		log.Warn().Msg("CHARCHITTI_REJOIN_SECRET not set, rejoin disabled")
	}

	addr := os.Getenv("CHARCHITTI_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	gin.SetMode(gin.ReleaseMode)
	server := ws.NewServer(ws.NewHub(secret, log), log)

	log.Info().Str("addr", addr).Msg("char-chitti server listening")
	if err := server.Routes().Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
