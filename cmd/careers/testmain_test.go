package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain loads the repository .env when present. Missing files are fine in CI.
func TestMain(m *testing.M) {
	for _, path := range []string{".env", "../../.env"} {
		_ = godotenv.Load(path)
	}
	os.Exit(m.Run())
}
