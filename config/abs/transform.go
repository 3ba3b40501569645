// Package configabs registers the 'abs' config transformation, replacing
// objects on the form {$abs: path} with path resolved against the current
// working folder.
package configabs

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/taskcluster/procsup/config"
	"github.com/taskcluster/procsup/runtime/abspath"
)

type provider struct{}

func init() {
	config.Register("abs", provider{})
}

func (provider) Transform(cfg map[string]interface{}) error {
	return config.ReplaceObjects(cfg, "abs", func(p string) (interface{}, error) {
		result, err := abspath.Resolve(filepath.FromSlash(p))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve absolute path for: %s", p)
		}
		return result.String(), nil
	})
}
