package main

import (
	"fmt"
	"os"

	"specprobe/internal/cli"
	"specprobe/internal/errors"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errors.UserMessage(err))
		os.Exit(1)
	}
}
