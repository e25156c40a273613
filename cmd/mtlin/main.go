package main

import (
	"os"

	"github.com/gnolang/mtlin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
