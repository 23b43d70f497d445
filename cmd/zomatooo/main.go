package main

import (
	"os"

	"github.com/Vatsa10/Zomatooo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
