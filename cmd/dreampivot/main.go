package main

import (
	"os"

	"github.com/dreampivot/trader/cmd/dreampivot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
