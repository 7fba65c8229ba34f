package main

import (
	"fmt"
	"os"

	"github.com/homeandown/estatehub/internal/cli"
)

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func main() {
	if err := cli.NewRootCmd(Version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
