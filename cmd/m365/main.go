// Package main is the entry point for the m365 CLI.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	a := newApp(os.Stdout, os.Stderr)
	os.Exit(a.execute(context.Background(), os.Args[1:]))
}
