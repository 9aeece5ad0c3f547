package main

import (
	"os"

	"github.com/vuebench/vuebench/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
