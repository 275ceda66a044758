// Package lock keeps a single headless watcher per schedule store
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"
	"github.com/spf13/afero"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// Holder describes the process named in a lockfile
type Holder struct {
	PID       int
	StorePath string
}

type Lock struct {
	fs        afero.Fs
	path      string
	storePath string
	held      bool
}

// PathFor returns the lockfile path next to the given store
func PathFor(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), constants.WatchLockfileName)
}

func New(storePath string) *Lock {
	return NewWithFs(afero.NewOsFs(), storePath)
}

func NewWithFs(fs afero.Fs, storePath string) *Lock {
	return &Lock{fs: fs, path: PathFor(storePath), storePath: storePath}
}

func (l *Lock) Path() string {
	return l.path
}

// Acquire writes the lockfile. It fails with ErrAlreadyRunning when the
// current lockfile names a live sundown process; stale or malformed
// lockfiles are replaced.
func (l *Lock) Acquire() error {
	holder, err := l.Holder()
	if err == nil {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrAlreadyRunning, "watcher pid %d", holder.PID),
			"stop the other watcher or remove %s", l.path,
		)
	}
	if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Replacing stale watch lockfile", "path", l.path, "reason", err)
	}

	if err := l.fs.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return errors.Wrap(err, "failed to create lockfile directory")
	}
	content := fmt.Sprintf("%d|%s", getpidFunc(), l.storePath)
	if err := afero.WriteFile(l.fs, l.path, []byte(content), 0600); err != nil {
		return errors.Wrap(err, "failed to write lockfile")
	}
	l.held = true
	logger.Debug("Watch lock acquired", "path", l.path)
	return nil
}

// Release removes the lockfile if this Lock holds it
func (l *Lock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := l.fs.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove lockfile")
	}
	return nil
}

// Holder returns the live process holding the lock. The error wraps
// os.ErrNotExist when no lockfile exists.
func (l *Lock) Holder() (Holder, error) {
	content, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Holder{}, errors.Wrap(os.ErrNotExist, "no watcher running")
		}
		return Holder{}, errors.Wrap(err, "failed to read lockfile")
	}

	parts := strings.SplitN(strings.TrimSpace(string(content)), "|", 2)
	if len(parts) != 2 {
		return Holder{}, errors.New("lockfile is malformed")
	}

	pid, err := strconv.Atoi(parts[0])
	if err != nil {
		return Holder{}, errors.New("invalid process ID in lockfile")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return Holder{}, errors.Newf("process %d is not running", pid)
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return Holder{}, errors.Newf("process with PID %d is not %s (is %s)", pid, constants.AppName, process.Executable())
	}

	return Holder{PID: pid, StorePath: parts[1]}, nil
}
