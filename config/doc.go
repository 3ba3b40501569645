// Package config loads the YAML configuration of procsup.
//
// A configuration file has the form:
//
//	transforms: [env, abs]
//	config:
//	  command: make -j8 all
//	  workingFolder: {$abs: ./build}
//	  environment:
//	    HOME: {$env: HOME}
//
// Each transformation listed under 'transforms' is applied in order to the
// 'config' object before it is decoded into a Config. Transformations are
// implemented in sub-packages that call Register from init(), so a binary
// only supports the transformations it imports.
package config
