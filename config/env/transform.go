// Package configenv registers the 'env' config transformation, replacing
// objects on the form {$env: VAR} with the value of the environment variable
// VAR. Unset variables are an error, use {$env: VAR} only where a value is
// required.
package configenv

import (
	"os"

	"github.com/pkg/errors"
	"github.com/taskcluster/procsup/config"
)

type provider struct{}

func init() {
	config.Register("env", provider{})
}

func (provider) Transform(cfg map[string]interface{}) error {
	return config.ReplaceObjects(cfg, "env", func(name string) (interface{}, error) {
		value, ok := os.LookupEnv(name)
		if !ok {
			return nil, errors.Errorf("environment variable %s is not set", name)
		}
		return value, nil
	})
}
