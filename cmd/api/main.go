package main

import (
	"flag"
	"os"

	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/nitn/phd-admission/internal/server"
)

// @title PhD Admission Portal API
// @version 1.0
// @description Applicant registration, application forms, document uploads and printable applications.

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer access token; the accessToken cookie is accepted as well

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default configs/config.yaml)")
	flag.Parse()

	srv, err := server.NewServer(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
