package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/facturo/facturo/cmd/facturo/cmd"
)

func main() {
	// A missing .env file is fine; explicit env vars still apply.
	_ = godotenv.Load()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
