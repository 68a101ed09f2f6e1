package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNotifierClosed is returned when adding directories to a closed notifier.
var ErrNotifierClosed = errors.New("notifier is closed")

// Op is a set of file system operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// triggerOps are the operations that count as a source change.
const triggerOps = OpCreate | OpWrite | OpRemove | OpRename

func (op Op) String() string {
	if op == 0 {
		return "UNKNOWN"
	}
	var parts []string
	for _, o := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	} {
		if op.Has(o.op) {
			parts = append(parts, o.name)
		}
	}
	return strings.Join(parts, "|")
}

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a single change notification. Path is absolute.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// Notifier is the source of file system change events.
type Notifier interface {
	// Add starts watching the entries of a single directory.
	Add(dir string) error
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// RecursiveNotifier is implemented by notifiers that can watch a whole tree,
// including directories created after the call.
type RecursiveNotifier interface {
	Notifier
	AddRecursive(dir string) error
}

// FSNotify is a Notifier backed by fsnotify.
type FSNotify struct {
	mu sync.Mutex

	watcher *fsnotify.Watcher
	dirs    map[string]bool
	// trees are roots added with AddRecursive; new directories below them are watched too
	trees []string

	events chan Event
	errors chan error

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewFSNotify creates a notifier and starts its event loop.
func NewFSNotify() (*FSNotify, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	n := &FSNotify{
		watcher: fsw,
		dirs:    make(map[string]bool),
		events:  make(chan Event, 64),
		errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
	}

	n.wg.Add(1)
	go n.processLoop()

	return n, nil
}

func (n *FSNotify) Add(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNotifierClosed
	}
	if n.dirs[abs] {
		return nil
	}
	if err := n.watcher.Add(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	n.dirs[abs] = true
	return nil
}

// AddRecursive watches dir and every directory below it.
func (n *FSNotify) AddRecursive(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}

	n.mu.Lock()
	n.trees = append(n.trees, abs)
	n.mu.Unlock()

	return n.addTree(abs)
}

func (n *FSNotify) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, the root itself is not
			if p == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return n.Add(p)
	})
}

func (n *FSNotify) Events() <-chan Event {
	return n.events
}

func (n *FSNotify) Errors() <-chan error {
	return n.errors
}

// Close stops the event loop and closes both channels.
func (n *FSNotify) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.closeCh)
	n.mu.Unlock()

	n.wg.Wait()

	close(n.events)
	close(n.errors)

	return n.watcher.Close()
}

func (n *FSNotify) processLoop() {
	defer n.wg.Done()

	for {
		select {
		case <-n.closeCh:
			return

		case fsEvent, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			n.handle(fsEvent)

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			n.sendError(err)
		}
	}
}

func (n *FSNotify) handle(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}

	if op.Has(OpCreate) && n.inTree(fsEvent.Name) {
		if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
			if err := n.addTree(fsEvent.Name); err != nil {
				n.sendError(err)
			}
		}
	}

	ev := Event{
		Path:      fsEvent.Name,
		Op:        op,
		Timestamp: time.Now(),
	}

	// Events are never dropped; a slow consumer applies back pressure.
	select {
	case n.events <- ev:
	case <-n.closeCh:
	}
}

func (n *FSNotify) inTree(path string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, root := range n.trees {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (n *FSNotify) sendError(err error) {
	select {
	case n.errors <- err:
	default:
		// nobody is reading errors, drop
	}
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}
