package system

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

var numa struct {
	once  sync.Once
	m     sync.Mutex
	nodes []unix.CPUSet
	next  int
}

// nextNodeAffinity returns the CPUs of the next NUMA node round-robin, ok is
// false if there is nothing to balance over.
func nextNodeAffinity() (*unix.CPUSet, bool) {
	numa.once.Do(func() {
		numa.nodes = readNodes("/sys/devices/system/node")
	})
	if len(numa.nodes) < 2 {
		return nil, false
	}
	numa.m.Lock()
	defer numa.m.Unlock()
	set := numa.nodes[numa.next%len(numa.nodes)]
	numa.next++
	return &set, true
}

func readNodes(root string) []unix.CPUSet {
	files, _ := filepath.Glob(filepath.Join(root, "node*", "cpulist"))
	sort.Strings(files)
	var nodes []unix.CPUSet
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		cpus, err := parseCPUList(string(data))
		if err != nil || len(cpus) == 0 {
			debug("ignoring %s: %v", file, err)
			continue
		}
		var set unix.CPUSet
		for _, cpu := range cpus {
			set.Set(cpu)
		}
		nodes = append(nodes, set)
	}
	return nodes
}

// parseCPUList parses lists like "0-3,8,10-11".
func parseCPUList(list string) ([]int, error) {
	var cpus []int
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	for _, part := range strings.Split(list, ",") {
		lo, hi := part, part
		if i := strings.IndexByte(part, '-'); i >= 0 {
			lo, hi = part[:i], part[i+1:]
		}
		first, err := strconv.Atoi(lo)
		if err != nil {
			return nil, err
		}
		last, err := strconv.Atoi(hi)
		if err != nil {
			return nil, err
		}
		for cpu := first; cpu <= last; cpu++ {
			cpus = append(cpus, cpu)
		}
	}
	return cpus, nil
}
