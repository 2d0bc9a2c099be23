package main

import (
	"os"

	"github.com/nturan/flashgram-bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
