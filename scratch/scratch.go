// Package scratch manages transient local storage. Each job gets its own
// uniquely named directory, and the manager guarantees it is released exactly
// once no matter how the job ends.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"cogforge/logger"
)

// State tracks a resource through its lifecycle.
type State int

const (
	Created State = iota
	InUse
	Released
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case InUse:
		return "in-use"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Resource is one job's scratch directory. It is exclusively owned by that
// job and must not be referenced after Release.
type Resource struct {
	path string

	mu    sync.Mutex
	state State
	mgr   *Manager
}

// Path returns the scratch directory path.
func (r *Resource) Path() string { return r.path }

// State returns the current lifecycle state.
func (r *Resource) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// MarkInUse transitions the resource from Created to InUse.
func (r *Resource) MarkInUse() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Created {
		r.state = InUse
	}
}

// Release removes the scratch directory and everything in it. The first call
// does the work; later calls are no-ops, so Release is safe to defer even
// when an earlier stage already tore the job down.
func (r *Resource) Release() error {
	r.mu.Lock()
	if r.state == Released {
		r.mu.Unlock()
		return nil
	}
	r.state = Released
	r.mu.Unlock()

	r.mgr.forget(r.path)
	if err := os.RemoveAll(r.path); err != nil {
		return fmt.Errorf("failed to remove scratch dir %s: %w", r.path, err)
	}
	logger.Debugf("released scratch dir %s", r.path)
	return nil
}

// Manager allocates scratch resources under a single base directory.
type Manager struct {
	baseDir string

	mu   sync.Mutex
	open map[string]*Resource
}

// NewManager ensures baseDir exists and returns a manager rooted there.
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch base dir %s: %w", baseDir, err)
	}
	return &Manager{baseDir: baseDir, open: make(map[string]*Resource)}, nil
}

// Create allocates a fresh scratch directory for one job. The path embeds a
// generated UUID so concurrent jobs can never collide.
func (m *Manager) Create(tag string) (*Resource, error) {
	dir := filepath.Join(m.baseDir, fmt.Sprintf("cogforge-%s-%s", tag, uuid.NewString()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch dir %s: %w", dir, err)
	}

	res := &Resource{path: dir, state: Created, mgr: m}
	m.mu.Lock()
	m.open[dir] = res
	m.mu.Unlock()

	logger.Debugf("created scratch dir %s", dir)
	return res, nil
}

// ActiveCount returns the number of resources not yet released.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

func (m *Manager) forget(path string) {
	m.mu.Lock()
	delete(m.open, path)
	m.mu.Unlock()
}
