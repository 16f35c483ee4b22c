// Package process reads process names from procfs.
package process

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/prometheus/procfs"
)

// procRoot is replaced in tests
var procRoot = procfs.DefaultMountPoint

func proc(pid uint32) (procfs.Proc, error) {
	if pid == 0 {
		return procfs.Proc{}, errors.New("no process id")
	}

	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return procfs.Proc{}, errors.Wrap(err, "failed to open procfs")
	}
	p, err := fs.Proc(int(pid))
	if err != nil {
		return procfs.Proc{}, errors.Wrapf(err, "process %d", pid)
	}
	return p, nil
}

// Name returns the command name of pid as reported by /proc/<pid>/comm
func Name(pid uint32) (string, error) {
	p, err := proc(pid)
	if err != nil {
		return "", err
	}
	name, err := p.Comm()
	if err != nil {
		return "", errors.Wrapf(err, "failed to read name of process %d", pid)
	}
	if name == "" {
		return "", errors.Errorf("process %d has no name", pid)
	}
	return name, nil
}

// Executable returns the base name of the first cmdline argument of pid,
// falling back to Name when the cmdline is empty (kernel threads, zombies)
func Executable(pid uint32) (string, error) {
	p, err := proc(pid)
	if err != nil {
		return "", err
	}
	if args, err := p.CmdLine(); err == nil && len(args) > 0 && args[0] != "" {
		return filepath.Base(args[0]), nil
	}
	return Name(pid)
}
