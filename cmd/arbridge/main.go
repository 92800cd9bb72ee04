package main

import (
	"os"

	"arbridge/internal/cli"
)

func main() { os.Exit(cli.Main()) }
