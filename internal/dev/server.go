// Package dev implements watch mode: the project is regenerated whenever the
// schema or the project file changes.
package dev

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/okra-platform/genpipe/internal/build"
	"github.com/okra-platform/genpipe/internal/config"
	"github.com/okra-platform/genpipe/internal/pipeline"
	"github.com/rs/zerolog"
)

// Rebuild reports one regeneration
type Rebuild struct {
	// Trigger is the changed path, or "startup"
	Trigger  string
	Outcomes []build.Outcome
	Err      error
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger.With().Str("component", "dev-server").Logger()
	}
}

// WithParallel sets how many configurations a rebuild runs at once
func WithParallel(n int) Option {
	return func(s *Server) {
		s.parallel = n
	}
}

// WithReport registers a callback invoked after every rebuild
func WithReport(fn func(Rebuild)) Option {
	return func(s *Server) {
		s.report = fn
	}
}

// WithConfigLoader replaces the loader used when the project file changes
func WithConfigLoader(fn ConfigLoader) Option {
	return func(s *Server) {
		s.loadConfig = fn
	}
}

// Server represents the watch mode server
type Server struct {
	projectRoot string
	configPath  string
	runner      BatchRunner
	logger      zerolog.Logger
	parallel    int
	report      func(Rebuild)
	loadConfig  ConfigLoader
	watcher     *FileWatcher

	mu           sync.Mutex
	cfg          *config.Config
	debounce     time.Duration
	timer        *time.Timer
	reload       bool
	running      bool
	pending      bool
	pendingCause string
}

// NewServer creates a watch mode server for the project rooted at
// projectRoot. cfg must already be resolved against projectRoot.
func NewServer(cfg *config.Config, configPath, projectRoot string, runner BatchRunner, opts ...Option) (*Server, error) {
	debounce, err := cfg.Dev.DebounceDuration()
	if err != nil {
		return nil, err
	}

	s := &Server{
		projectRoot: projectRoot,
		configPath:  configPath,
		runner:      runner,
		logger:      zerolog.Nop(),
		parallel:    1,
		loadConfig:  config.LoadConfigFromPath,
		cfg:         cfg,
		debounce:    debounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start regenerates once, then watches the project until ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.rebuild(ctx, "startup")

	patterns := append([]string{}, s.config().Dev.Watch...)
	if s.configPath != "" {
		patterns = append(patterns, filepath.Base(s.configPath))
	}

	watcher, err := NewFileWatcher(patterns, s.config().Dev.Exclude, func(path string, op fsnotify.Op) {
		s.handleFileChange(ctx, path, op)
	}, s.logger)
	if err != nil {
		return err
	}
	s.watcher = watcher
	defer s.watcher.Close()

	if err := s.watcher.AddDirectory(s.projectRoot); err != nil {
		return errors.Wrap(err, "failed to watch project directory")
	}

	s.logger.Info().
		Str("root", s.projectRoot).
		Strs("patterns", patterns).
		Dur("debounce", s.debounce).
		Msg("watching for changes")

	err = s.watcher.Start(ctx)
	s.stopTimer()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// handleFileChange is called when a watched file changes
func (s *Server) handleFileChange(ctx context.Context, path string, op fsnotify.Op) {
	if !op.Has(fsnotify.Create) && !op.Has(fsnotify.Write) && !op.Has(fsnotify.Remove) && !op.Has(fsnotify.Rename) {
		return
	}
	// Editor swap and backup files
	if strings.HasSuffix(path, "~") || strings.HasSuffix(path, ".tmp") || strings.HasSuffix(path, ".swp") {
		return
	}

	rel, err := filepath.Rel(s.projectRoot, path)
	if err != nil {
		rel = path
	}
	s.logger.Debug().Str("path", rel).Stringer("op", op).Msg("file changed")

	s.mu.Lock()
	if s.configPath != "" && filepath.Clean(path) == filepath.Clean(s.configPath) {
		s.reload = true
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.rebuild(ctx, rel)
	})
	s.mu.Unlock()
}

func (s *Server) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// rebuild regenerates every configuration. A rebuild requested while one is
// running is queued and runs once the current one finishes.
func (s *Server) rebuild(ctx context.Context, trigger string) {
	s.mu.Lock()
	if s.running {
		s.pending = true
		s.pendingCause = trigger
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	for {
		s.runOnce(ctx, trigger)

		s.mu.Lock()
		if !s.pending || ctx.Err() != nil {
			s.running = false
			s.pending = false
			s.mu.Unlock()
			return
		}
		s.pending = false
		trigger = s.pendingCause
		s.mu.Unlock()
	}
}

func (s *Server) runOnce(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}

	cfg, err := s.currentConfig()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to reload config, keeping the previous one")
		s.emit(Rebuild{Trigger: trigger, Err: err})
		return
	}

	s.logger.Info().Str("trigger", trigger).Msg("regenerating")
	outcomes, err := s.runner.RunAll(ctx, cfg, pipeline.ModeFull, s.parallel)
	if err != nil {
		s.logger.Error().Err(err).Msg("regeneration failed")
	}
	s.emit(Rebuild{Trigger: trigger, Outcomes: outcomes, Err: err})
}

// currentConfig returns the active config, reloading the project file first
// when it changed
func (s *Server) currentConfig() (*config.Config, error) {
	s.mu.Lock()
	reload := s.reload
	s.reload = false
	cfg := s.cfg
	s.mu.Unlock()

	if !reload {
		return cfg, nil
	}

	next, err := s.loadConfig(s.configPath)
	if err != nil {
		return nil, err
	}
	if err := next.Resolve(s.projectRoot); err != nil {
		return nil, err
	}
	debounce, err := next.Dev.DebounceDuration()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cfg = next
	s.debounce = debounce
	s.mu.Unlock()
	s.logger.Info().Int("configurations", len(next.Configurations)).Msg("reloaded config")
	return next, nil
}

func (s *Server) emit(r Rebuild) {
	if s.report != nil {
		s.report(r)
	}
}
