package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/go-ps"
)

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

func withProcesses(t *testing.T, list func() ([]ps.Process, error)) {
	t.Helper()
	orig := processLister
	processLister = list
	t.Cleanup(func() { processLister = orig })
}

func TestOtherInstances(t *testing.T) {
	self := executableName()
	withProcesses(t, func() ([]ps.Process, error) {
		return []ps.Process{
			fakeProcess{pid: os.Getpid(), name: self},
			fakeProcess{pid: 4242, name: self},
			fakeProcess{pid: 4343, name: self + ".exe"},
			fakeProcess{pid: 99, name: "bash"},
		}, nil
	})

	pids, err := otherInstances()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{4242, 4343}, pids); diff != "" {
		t.Errorf("pids mismatch (-want +got):\n%s", diff)
	}
}

func TestOtherInstancesError(t *testing.T) {
	withProcesses(t, func() ([]ps.Process, error) {
		return nil, errors.New("no procfs")
	})
	if _, err := otherInstances(); err == nil {
		t.Error("expected error")
	}
}
