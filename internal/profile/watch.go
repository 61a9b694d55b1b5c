package profile

import (
	"context"

	"github.com/conneroisu/linkpage/internal/watcher"
)

// startWatching starts the file watcher once. Later calls return nil
// without doing anything, as do calls after Close.
func (s *Store) startWatching() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if s.watching || s.closed {
		return nil
	}

	fw, err := watcher.NewFileWatcher(s.debounce, s.logger)
	if err != nil {
		return err
	}
	fw.AddFilter(watcher.NoTempFilter)
	fw.AddHandler(s.handleChange)

	if err := fw.WatchFile(s.path); err != nil {
		_ = fw.Stop()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := fw.Start(ctx); err != nil {
		cancel()
		_ = fw.Stop()
		return err
	}

	s.watcher = fw
	s.cancel = cancel
	s.watching = true

	s.logger.Info(ctx, "Watching profile configuration", "path", s.path, "debounce", s.debounce)

	return nil
}

// handleChange reloads the profile and runs the reload listeners. Errors
// are logged and swallowed so the watch loop keeps running.
func (s *Store) handleChange(ctx context.Context, events []watcher.ChangeEvent) error {
	for _, ev := range events {
		s.logger.Debug(ctx, "Profile configuration changed", "event", ev.Type.String(), "path", ev.Path)
	}

	p, err := s.Load(ctx, true)
	if err != nil {
		s.logger.Error(ctx, err, "Profile reload failed, keeping previous profile", "generation", s.Generation())
		return nil
	}

	s.notifyReload(ctx, p)

	return nil
}
