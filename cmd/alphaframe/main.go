package main

import (
	"os"

	"github.com/alphaframe/alphaframe/cmd/alphaframe/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
