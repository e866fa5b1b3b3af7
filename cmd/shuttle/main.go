package main

import (
	"os"

	"github.com/felixgeelhaar/shuttle/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
