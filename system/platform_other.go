//go:build !linux && !windows

package system

var platformStrategy strategy = portableStrategy{}

func newGroupPrimitive(killOnClose bool) (groupPrimitive, error) {
	return advisoryGroup{}, nil
}
