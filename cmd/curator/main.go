package main

import (
	"os"

	"ContentCurator/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
