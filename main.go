package main

import (
	"os"

	"github.com/conneroisu/smallgears/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
