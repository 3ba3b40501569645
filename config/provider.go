package config

import (
	"fmt"
	"sort"
	"sync"
)

// A TransformationProvider rewrites the raw configuration object in place,
// typically by replacing objects matching a pattern, see ReplaceObjects.
type TransformationProvider interface {
	Transform(config map[string]interface{}) error
}

var (
	mProviders sync.Mutex
	providers  = map[string]TransformationProvider{}
)

// Register a TransformationProvider under name. This is intended to be called
// from init() and panics if name is already in use.
func Register(name string, provider TransformationProvider) {
	mProviders.Lock()
	defer mProviders.Unlock()

	if _, ok := providers[name]; ok {
		panic(fmt.Sprintf("config transformation '%s' is already registered", name))
	}
	providers[name] = provider
}

// Lookup returns the TransformationProvider registered as name.
func Lookup(name string) (TransformationProvider, bool) {
	mProviders.Lock()
	defer mProviders.Unlock()

	p, ok := providers[name]
	return p, ok
}

// Transformations returns the sorted names of all registered providers.
func Transformations() []string {
	mProviders.Lock()
	defer mProviders.Unlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
