package version

import (
	"fmt"

	"github.com/taskcluster/procsup/commands"
	yaml "gopkg.in/yaml.v3"
)

func init() {
	commands.Register("version", cmd{})
}

type cmd struct{}

func (cmd) Summary() string {
	return "Display version information"
}

func (cmd) Usage() string {
	return `
procsup version displays version information.

usage: procsup version [options] [semver|revision]

options:
  -y --yaml     Print as YAML.
  -h --help     Show this screen.
`
}

func info(semver, revision bool) map[string]string {
	result := map[string]string{}
	if !revision {
		result["version"] = Version()
	}
	if !semver {
		result["revision"] = Revision()
	}
	for k, v := range result {
		if v == "" {
			result[k] = "unknown"
		}
	}
	return result
}

func (cmd) Execute(arguments map[string]interface{}) bool {
	result := info(arguments["semver"].(bool), arguments["revision"].(bool))

	if arguments["--yaml"].(bool) {
		data, err := yaml.Marshal(result)
		if err != nil {
			return false
		}
		fmt.Print(string(data))
		return true
	}
	if v, ok := result["version"]; ok {
		fmt.Printf("version:  %s\n", v)
	}
	if r, ok := result["revision"]; ok {
		fmt.Printf("revision: %s\n", r)
	}
	return true
}
