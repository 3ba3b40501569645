// Package commands exposes a run method for main() to call
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/docopt/docopt-go"
)

// Usage returns the top-level usage string listing all registered commands.
func Usage() string {
	names := Names()
	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	usage := "usage: procsup <command> [<args>...]\n"
	usage += "\n"
	usage += "Commands available:\n"
	for _, name := range names {
		usage += "\n    " + pad(name, width) + " " + Lookup(name).Summary()
	}
	return usage + "\n"
}

// Run parses command line arguments and runs the command given, argv nil
// means os.Args[1:]. Returns false if the command failed.
func Run(argv []string) bool {
	usage := Usage()
	arguments, _ := docopt.Parse(usage, argv, true, "procsup", true)
	cmd := arguments["<command>"].(string)

	provider := Lookup(cmd)
	if provider == nil {
		fmt.Fprintln(os.Stderr, "Unknown command:", cmd)
		fmt.Fprint(os.Stderr, usage)
		return false
	}

	subArguments, _ := docopt.Parse(
		provider.Usage(), append([]string{cmd}, arguments["<args>"].([]string)...),
		true, "procsup", false,
	)
	return provider.Execute(subArguments)
}

func pad(s string, length int) string {
	p := length - len(s)
	if p < 0 {
		p = 0
	}
	return s + strings.Repeat(" ", p)
}
