package config

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/taskcluster/procsup/runtime/ioext"
	yaml "gopkg.in/yaml.v3"
)

// Upper bound on the size of a configuration file.
const maxConfigSize = 1024 * 1024

// Load configuration from YAML data, apply the transformations it lists and
// validate the result.
func Load(data []byte) (*Config, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML config")
	}
	raw = normalize(raw)

	top, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected top-level config value to be an object")
	}
	for key := range top {
		if key != "config" && key != "transforms" {
			return nil, errors.Errorf("unknown top-level property '%s'", key)
		}
	}
	result, ok := top["config"].(map[string]interface{})
	if !ok {
		return nil, errors.New("expected 'config' property to be an object")
	}

	transforms, err := transformNames(top["transforms"])
	if err != nil {
		return nil, err
	}
	for _, name := range transforms {
		provider, ok := Lookup(name)
		if !ok {
			return nil, errors.Errorf("unknown config transformation: %s, supported: %v", name, Transformations())
		}
		if err := provider.Transform(result); err != nil {
			return nil, errors.Wrapf(err, "config transformation: %s failed", name)
		}
	}

	// Decode through YAML again, so yaml tags and type checks apply
	out, err := yaml.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "transformations produced invalid config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(out))
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFromFile loads configuration from a YAML file, see Load.
func LoadFromFile(filename string) (*Config, error) {
	data, err := ioext.BoundedReadFile(filename, maxConfigSize)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file '%s'", filename)
	}
	return Load(data)
}

func transformNames(val interface{}) ([]string, error) {
	if val == nil {
		return nil, nil
	}
	list, ok := val.([]interface{})
	if !ok {
		return nil, errors.New("expected 'transforms' to be a list of strings")
	}
	names := make([]string, 0, len(list))
	for _, v := range list {
		name, ok := v.(string)
		if !ok {
			return nil, errors.Errorf("expected 'transforms' to be a list of strings, found %v", v)
		}
		names = append(names, name)
	}
	return names, nil
}

// normalize turns map[interface{}]interface{}, which YAML produces for
// non-string keys, into map[string]interface{}.
func normalize(val interface{}) interface{} {
	switch val := val.(type) {
	case []interface{}:
		for i, v := range val {
			val[i] = normalize(v)
		}
		return val
	case map[string]interface{}:
		for k, v := range val {
			val[k] = normalize(v)
		}
		return val
	case map[interface{}]interface{}:
		r := make(map[string]interface{}, len(val))
		for k, v := range val {
			r[fmt.Sprintf("%v", k)] = normalize(v)
		}
		return r
	default:
		return val
	}
}
