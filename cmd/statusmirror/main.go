package main

import (
	"log"

	"github.com/joho/godotenv"

	"statusmirror/internal/app"
)

func main() {
	// Local deployments keep their settings in a .env next to the binary;
	// absence is fine, the environment wins either way.
	_ = godotenv.Load()

	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ statusmirror failed to start: %v", err)
	}
}
