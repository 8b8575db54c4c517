package main

import (
	"os"

	"fieldcheck/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
