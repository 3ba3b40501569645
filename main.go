// Package main hosts the main function for procsup.
package main

import (
	"os"

	"github.com/taskcluster/procsup/commands"
	_ "github.com/taskcluster/procsup/commands/help"
	_ "github.com/taskcluster/procsup/commands/spawn"
	_ "github.com/taskcluster/procsup/commands/version"
	_ "github.com/taskcluster/procsup/config/abs"
	_ "github.com/taskcluster/procsup/config/env"
)

func main() {
	if !commands.Run(nil) {
		os.Exit(1)
	}
}
