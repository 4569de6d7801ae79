package main

import (
	"os"

	"github.com/fjglira/GoRPA-OrderBot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
