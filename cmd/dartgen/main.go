package main

import (
	"os"

	"github.com/blimu-dev/dartgen/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
