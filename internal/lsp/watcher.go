package lsp

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
)

// WatcherConfig holds configuration for the debounced watcher
type WatcherConfig struct {
	DebounceDuration time.Duration
	ParallelFiles    int
	WatchPatterns    []string
	IgnorePatterns   []string
}

// DefaultWatcherConfig covers the source extensions quill can review.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		DebounceDuration: 300 * time.Millisecond,
		ParallelFiles:    3,
		WatchPatterns: []string{
			"**/*.{js,mjs,cjs,jsx}",
			"**/*.{ts,tsx}",
			"**/*.py",
			"**/*.java",
			"**/*.go",
		},
		IgnorePatterns: []string{
			"**/node_modules/**",
			"**/.git/**",
			"**/vendor/**",
			"**/.quill/**",
		},
	}
}

// DebouncedWatcher batches document changes and triggers analysis after a
// quiet period.
type DebouncedWatcher struct {
	config    WatcherConfig
	onTrigger func(files []string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool
}

// NewDebouncedWatcher creates a watcher with the default patterns.
func NewDebouncedWatcher(debounce time.Duration, onTrigger func(files []string)) *DebouncedWatcher {
	config := DefaultWatcherConfig()
	config.DebounceDuration = debounce
	return NewDebouncedWatcherWithConfig(config, onTrigger)
}

func NewDebouncedWatcherWithConfig(config WatcherConfig, onTrigger func(files []string)) *DebouncedWatcher {
	if onTrigger == nil {
		panic("onTrigger callback cannot be nil")
	}
	defaults := DefaultWatcherConfig()
	if config.DebounceDuration == 0 {
		config.DebounceDuration = defaults.DebounceDuration
	}
	if config.ParallelFiles == 0 {
		config.ParallelFiles = defaults.ParallelFiles
	}
	return &DebouncedWatcher{
		config:    config,
		onTrigger: onTrigger,
		pending:   make(map[string]struct{}),
	}
}

// UpdateConfig replaces the non-zero fields of config.
func (w *DebouncedWatcher) UpdateConfig(config WatcherConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if config.DebounceDuration > 0 {
		w.config.DebounceDuration = config.DebounceDuration
	}
	if config.ParallelFiles > 0 {
		w.config.ParallelFiles = config.ParallelFiles
	}
	if len(config.WatchPatterns) > 0 {
		w.config.WatchPatterns = config.WatchPatterns
	}
	if len(config.IgnorePatterns) > 0 {
		w.config.IgnorePatterns = config.IgnorePatterns
	}
}

func (w *DebouncedWatcher) Config() WatcherConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.config
}

// FileChanged queues a document and restarts the quiet period.
func (w *DebouncedWatcher) FileChanged(uri string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	w.pending[uri] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.DebounceDuration, w.flush)
}

func (w *DebouncedWatcher) flush() {
	w.mu.Lock()
	if w.stopped || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = make(map[string]struct{})
	parallel := w.config.ParallelFiles
	w.mu.Unlock()

	if parallel <= 1 || len(files) <= parallel {
		w.onTrigger(files)
		return
	}

	var g errgroup.Group
	g.SetLimit(parallel)
	for _, f := range files {
		g.Go(func() error {
			w.onTrigger([]string{f})
			return nil
		})
	}
	_ = g.Wait()
}

// Stop cancels any pending flush. Later changes are ignored.
func (w *DebouncedWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *DebouncedWatcher) ShouldWatch(path string) bool {
	config := w.Config()
	return ShouldWatchPath(path, config.WatchPatterns, config.IgnorePatterns)
}

// ShouldWatchPath reports whether path matches a watch pattern and no
// ignore pattern. Patterns use glob syntax where ** crosses directories.
// An empty watch list matches everything not ignored.
func ShouldWatchPath(path string, watchPatterns, ignorePatterns []string) bool {
	normalized := filepath.ToSlash(uriToPath(path))

	for _, pattern := range ignorePatterns {
		if matchGlobPattern(normalized, pattern) {
			return false
		}
	}
	if len(watchPatterns) == 0 {
		return true
	}
	for _, pattern := range watchPatterns {
		if matchGlobPattern(normalized, pattern) {
			return true
		}
	}
	return false
}

var (
	globMu    sync.Mutex
	globCache = make(map[string]glob.Glob)
)

// matchGlobPattern matches path against pattern. Invalid patterns never match.
func matchGlobPattern(path, pattern string) bool {
	path = "/" + strings.TrimPrefix(filepath.ToSlash(path), "/")
	pattern = filepath.ToSlash(pattern)
	if !strings.HasPrefix(pattern, "/") && !strings.HasPrefix(pattern, "**") {
		pattern = "**/" + pattern
	}

	globMu.Lock()
	g, ok := globCache[pattern]
	if !ok {
		var err error
		g, err = glob.Compile(pattern, '/')
		if err != nil {
			g = nil
		}
		globCache[pattern] = g
	}
	globMu.Unlock()

	return g != nil && g.Match(path)
}

// ParseDuration parses a duration string like "5m", "300ms", etc.
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
