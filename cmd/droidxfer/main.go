// droidxfer - browse and transfer files between this computer and an Android device
package main

import (
	"os"

	"github.com/droidxfer/droidxfer/internal/cli"
	"github.com/droidxfer/droidxfer/internal/version"
)

// Version information, overridden by ldflags for releases.
var (
	Version   = "v0.4.0"
	BuildTime = "2026-10-18"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
