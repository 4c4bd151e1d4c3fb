package main

import (
	"os"

	"github.com/ppiankov/subherald/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
