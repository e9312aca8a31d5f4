package main

import (
	"fmt"
	"os"

	"kali-launcher/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kali-launcher:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
