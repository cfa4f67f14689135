package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Provider credentials commonly live in a local .env during development.
	_ = godotenv.Load()
	Execute()
}
