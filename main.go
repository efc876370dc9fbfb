package main

import (
	"os"

	"github.com/saraswati/saraswati/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
