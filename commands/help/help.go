// Package help implements `procsup help`, which prints the usage of a single
// command or the list of all commands.
package help

import (
	"fmt"
	"io"
	"os"

	"github.com/taskcluster/procsup/commands"
)

func init() {
	commands.Register("help", cmd{})
}

type cmd struct{}

func (cmd) Summary() string {
	return "Show usage for procsup or one of its commands"
}

func (cmd) Usage() string {
	return `
procsup help prints the usage string of <command>, or lists all commands when
no command is given.

usage: procsup help [<command>]
`
}

func (cmd) Execute(arguments map[string]interface{}) bool {
	name, _ := arguments["<command>"].(string)
	return printHelp(os.Stdout, os.Stderr, name)
}

func printHelp(stdout, stderr io.Writer, name string) bool {
	if name == "" {
		fmt.Fprint(stdout, commands.Usage())
		return true
	}
	provider := commands.Lookup(name)
	if provider == nil {
		fmt.Fprintf(stderr, "procsup: no such command %q\n\n", name)
		fmt.Fprint(stderr, commands.Usage())
		return false
	}
	fmt.Fprint(stdout, provider.Usage())
	return true
}
