// CraftDeck - remote file manager for game server panels.
package main

import (
	"os"

	"github.com/craftdeck/craftdeck/internal/cli"
	"github.com/craftdeck/craftdeck/internal/version"
)

// Version information, overridden by ldflags in release builds.
var (
	Version   = "v1.0.0"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
