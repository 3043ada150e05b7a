package main

import (
	// Embedded zoneinfo so profile timezones resolve on minimal images.
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; deployments set real environment variables
	_ = godotenv.Load()

	Execute()
}
