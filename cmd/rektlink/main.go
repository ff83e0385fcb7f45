package main

import (
	"os"

	"rektlink/cmd/rektlink/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
