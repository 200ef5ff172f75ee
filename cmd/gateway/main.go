package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/anthonypate54/familynest/pkg/gateway"
)

func main() {
	// A .env next to the binary is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded environment from .env")
	}

	gw, err := gateway.NewGateway()
	if err != nil {
		log.Fatal().Err(err).Msg("error creating gateway")
	}

	if err := gw.Start(); err != nil {
		log.Fatal().Err(err).Msg("gateway exited with error")
	}
	log.Info().Msg("Gateway stopped")
}
