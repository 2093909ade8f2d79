package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// processLister returns the running processes. Replaced in tests.
var processLister = ps.Processes

// otherInstances finds other running processes with the same executable name as
// this one. The registry cache is shared between them without locking.
func otherInstances() ([]int, error) {
	processes, err := processLister()
	if err != nil {
		return nil, fmt.Errorf("failed to get process list: %w", err)
	}

	self := os.Getpid()
	name := executableName()
	var pids []int
	for _, p := range processes {
		if p.Pid() != self && strings.TrimSuffix(p.Executable(), ".exe") == name {
			pids = append(pids, p.Pid())
		}
	}
	return pids, nil
}

func executableName() string {
	name := filepath.Base(os.Args[0])
	name = strings.TrimSuffix(name, ".exe")
	// Linux reports at most 15 characters of the command name.
	if len(name) > 15 {
		name = name[:15]
	}
	return name
}
