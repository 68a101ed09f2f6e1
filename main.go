package main

import (
	"os"

	"github.com/maxkimambo/taskwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
