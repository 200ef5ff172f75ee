package main

import (
	"os"

	"github.com/anthonypate54/familynest/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
