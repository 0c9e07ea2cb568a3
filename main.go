package main

import (
	"os"

	"github.com/yhkl-dev/zencli/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
