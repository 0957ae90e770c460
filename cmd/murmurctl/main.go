package main

import (
	"os"

	"github.com/anonto42/murmur/backend/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
