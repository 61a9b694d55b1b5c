package profile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/conneroisu/linkpage/internal/errors"
	"github.com/conneroisu/linkpage/internal/logging"
	"github.com/conneroisu/linkpage/internal/watcher"
)

// DefaultFileName is read from the working directory when no path is set.
const DefaultFileName = "config.json"

// State is the lifecycle stage of a Store.
type State int

const (
	StateInitialized State = iota
	StateLoaded
	StateWatching
)

// String returns the string representation of the State
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateLoaded:
		return "loaded"
	case StateWatching:
		return "watching"
	default:
		return "unknown"
	}
}

// ReloadFunc is called after a watcher-driven reload succeeded.
type ReloadFunc func(ctx context.Context, p *Profile)

// Options configures a Store.
type Options struct {
	// Path of the configuration file. Empty means ./config.json.
	Path string
	// Watch starts a file watcher after the first successful load.
	Watch bool
	// Debounce groups bursts of file events into one reload.
	Debounce time.Duration
	Logger   logging.Logger
}

// Store owns the cached profile. It is safe for concurrent use.
type Store struct {
	path     string
	watch    bool
	debounce time.Duration
	logger   logging.Logger
	errors   *errors.ErrorHandler
	readFile func(string) ([]byte, error)

	loadMu     sync.Mutex
	mu         sync.RWMutex
	profile    *Profile
	generation uint64

	watchMu  sync.Mutex
	watcher  *watcher.FileWatcher
	cancel   context.CancelFunc
	watching bool
	closed   bool

	listenersMu sync.RWMutex
	listeners   []ReloadFunc
}

// ResolvePath returns the absolute configuration path for configured,
// falling back to config.json in the working directory.
func ResolvePath(configured string) (string, error) {
	if configured == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(cwd, DefaultFileName), nil
	}
	return filepath.Abs(configured)
}

// NewStore creates a store in the initialized state. Nothing is read until
// the first Load or Get.
func NewStore(opts Options) (*Store, error) {
	path, err := ResolvePath(opts.Path)
	if err != nil {
		return nil, errors.NewConfigReadError(opts.Path, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.WithComponent("profile")

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	return &Store{
		path:     path,
		watch:    opts.Watch,
		debounce: debounce,
		logger:   logger,
		errors:   errors.NewErrorHandler(logger),
		readFile: os.ReadFile,
	}, nil
}

// Path returns the resolved configuration path.
func (s *Store) Path() string { return s.path }

// Get returns the cached profile, loading it on first access.
func (s *Store) Get(ctx context.Context) (*Profile, error) {
	return s.Load(ctx, false)
}

// Load returns the cached profile without touching the filesystem unless
// forceReload is set or nothing has been loaded yet. A failed load leaves
// the cached profile untouched. After a successful load the file watcher
// is started if enabled; starting it again is a no-op.
func (s *Store) Load(ctx context.Context, forceReload bool) (*Profile, error) {
	if !forceReload {
		if p := s.cached(); p != nil {
			return p, nil
		}
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// Another caller may have loaded while we waited.
	if !forceReload {
		if p := s.cached(); p != nil {
			return p, nil
		}
	}

	data, err := s.readFile(s.path)
	if err != nil {
		return nil, errors.NewConfigReadError(s.path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, errors.NewConfigParseError(s.path, err)
	}

	s.mu.Lock()
	s.profile = p
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	s.logger.Info(ctx, "Profile loaded",
		"path", s.path,
		"generation", generation,
		"links", p.Links.Len(),
	)
	for _, issue := range Lint(p) {
		s.logger.Warn(ctx, nil, "Profile lint", "field", issue.Field, "issue", issue.Message)
	}

	if s.watch {
		if err := s.startWatching(); err != nil {
			s.errors.Handle(ctx, errors.NewIOError(errors.ErrCodeConfigRead, "cannot watch profile configuration", err).
				WithFile(s.path).
				WithComponent("profile"))
		}
	}

	return p, nil
}

func (s *Store) cached() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// State reports the lifecycle stage.
func (s *Store) State() State {
	s.watchMu.Lock()
	watching := s.watching
	s.watchMu.Unlock()

	if watching {
		return StateWatching
	}
	if s.cached() != nil {
		return StateLoaded
	}
	return StateInitialized
}

// Current returns the cached profile without loading it, or nil before the
// first successful load.
func (s *Store) Current() *Profile { return s.cached() }

// Generation counts successful loads.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// OnReload registers fn to run after every successful watcher reload.
func (s *Store) OnReload(fn ReloadFunc) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notifyReload(ctx context.Context, p *Profile) {
	s.listenersMu.RLock()
	listeners := make([]ReloadFunc, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, p)
	}
}

// Close stops the watcher. The cached profile stays readable and the
// watcher is never restarted.
func (s *Store) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	s.closed = true
	s.watching = false

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.watcher != nil {
		err := s.watcher.Stop()
		s.watcher = nil
		return err
	}

	return nil
}
