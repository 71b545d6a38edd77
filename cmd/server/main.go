package main

import (
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/IsaacValiente/Mobility.Payments/cmd/httpserver"
	"github.com/IsaacValiente/Mobility.Payments/internal/middleware"
	"github.com/IsaacValiente/Mobility.Payments/pkg/configpkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}

	server, err := httpserver.New(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	if err := server.Engine.Run(config.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
