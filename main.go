package main

import (
	"os"

	"github.com/spigell/edubridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
