package main

import (
	"log"
	"os"

	"github.com/andreyxaxa/PixelVault/config"
	"github.com/andreyxaxa/PixelVault/internal/app"
	"github.com/joho/godotenv"
)

// _defaultEnvFile is read when PIXELVAULT_ENV_FILE is unset.
const _defaultEnvFile = ".env"

func main() {
	// Config
	envFile := os.Getenv("PIXELVAULT_ENV_FILE")
	if envFile == "" {
		envFile = _defaultEnvFile
	}

	if _, err := os.Stat(envFile); err == nil {
		// variables already set in the environment win over the file
		if err = godotenv.Load(envFile); err != nil {
			log.Fatalf("pixelvault: load %s: %s", envFile, err)
		}
	} else if envFile != _defaultEnvFile {
		log.Fatalf("pixelvault: env file %s: %s", envFile, err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("pixelvault: %s", err)
	}

	// Run
	app.Run(cfg)
}
