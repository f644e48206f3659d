// Package daemon holds the process bookkeeping for the headless web host:
// a PID file guarding against a second instance and a periodically
// rewritten health file for external monitors.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned by AcquirePID when a live process holds the file.
var ErrAlreadyRunning = errors.New("posture-pulse web host already running")

// PIDFile is a held PID lock.
type PIDFile struct {
	path string
}

// AcquirePID writes the current PID to path. A file left behind by a dead
// process is taken over.
func AcquirePID(path string) (*PIDFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create pid directory: %w", err)
	}

	if pid, err := ReadPID(path); err == nil && pid != os.Getpid() && processAlive(pid) {
		return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	if err := writeAtomic(path, []byte(strconv.Itoa(os.Getpid()))); err != nil {
		return nil, fmt.Errorf("write pid file: %w", err)
	}
	return &PIDFile{path: path}, nil
}

// Path returns the file location.
func (p *PIDFile) Path() string { return p.path }

// Release removes the file. Releasing twice is harmless.
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}

// ReadPID parses the PID stored at path.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file: %w", err)
	}
	return pid, nil
}

// processAlive probes pid with signal 0.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// writeAtomic writes to a sibling temp file and renames it into place, so
// readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
