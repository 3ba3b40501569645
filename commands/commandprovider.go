package commands

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mCommands sync.Mutex
	commands  = map[string]CommandProvider{}
)

// CommandProvider is implemented by packages providing a procsup sub-command.
type CommandProvider interface {
	// Summary returns a one-line description of the command.
	Summary() string
	// Usage returns the docopt usage string, used to parse arguments.
	Usage() string
	// Execute is called with the parsed docopt result, returns false if
	// procsup should exit non-zero.
	Execute(args map[string]interface{}) bool
}

// Register a CommandProvider. This is intended to be called from init() and
// panics if name is already in use.
func Register(name string, provider CommandProvider) {
	mCommands.Lock()
	defer mCommands.Unlock()

	if _, ok := commands[name]; ok {
		panic(fmt.Sprintf("command name: '%s' is already in use", name))
	}
	commands[name] = provider
}

// Lookup returns the CommandProvider registered as name, or nil.
func Lookup(name string) CommandProvider {
	mCommands.Lock()
	defer mCommands.Unlock()

	return commands[name]
}

// Names returns the sorted names of registered commands.
func Names() []string {
	mCommands.Lock()
	defer mCommands.Unlock()

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
