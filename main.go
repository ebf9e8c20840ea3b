package main

import (
	"os"

	"github.com/logward/logward/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
