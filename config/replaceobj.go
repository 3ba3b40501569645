package config

import "github.com/pkg/errors"

// ReplaceObjects traverses config and replaces every object that has a
// '$' + key property with the value returned by replacement(value), where
// value is the string value of that property.
//
//	ReplaceObjects(cfg, "env", func(name string) (interface{}, error) {
//		return os.Getenv(name), nil
//	})
//
// turns {"home": {"$env": "HOME"}} into {"home": "/home/user"}.
func ReplaceObjects(
	config map[string]interface{},
	key string,
	replacement func(value string) (interface{}, error),
) error {
	_, err := replaceIn(config, "$"+key, replacement)
	return err
}

func replaceIn(
	val interface{},
	property string,
	replacement func(value string) (interface{}, error),
) (interface{}, error) {
	switch val := val.(type) {
	case []interface{}:
		for i, v := range val {
			r, err := replaceIn(v, property, replacement)
			if err != nil {
				return nil, err
			}
			val[i] = r
		}
	case map[string]interface{}:
		if v, ok := val[property]; ok {
			s, ok := v.(string)
			if !ok || len(val) != 1 {
				return nil, errors.Errorf("expected {%s: <string>}, found %v", property, val)
			}
			return replacement(s)
		}
		for k, v := range val {
			r, err := replaceIn(v, property, replacement)
			if err != nil {
				return nil, err
			}
			val[k] = r
		}
	}
	return val, nil
}
