package main

import (
	"os"

	"github.com/joho/godotenv"

	"layerguard/internal/ui/cli"
)

func main() {
	// LAYERGUARD_* settings may live in a local .env file.
	_ = godotenv.Load()
	os.Exit(cli.Execute())
}
