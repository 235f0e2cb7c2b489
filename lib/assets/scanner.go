// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package assets tracks the project directory's files for the host's
// asset pipeline. A background goroutine owns the file index and
// serves scan and reimport requests; the bridge's filesystem methods
// are fire-and-forget signals into that goroutine.
package assets

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Scanner watches a project directory and maintains an index of its
// files. Scan requests walk the whole tree; filesystem notifications
// keep the index warm between requests.
type Scanner struct {
	root    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	scanRequests chan struct{}
	reimports    chan []string
	done         chan struct{}

	mu    sync.Mutex
	files map[string]time.Time
	scans int
}

// New creates a scanner for the project directory. Call Start to
// begin watching.
func New(root string, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("assets: creating watcher: %w", err)
	}
	return &Scanner{
		root:         root,
		logger:       logger,
		watcher:      watcher,
		scanRequests: make(chan struct{}, 1),
		reimports:    make(chan []string, 16),
		done:         make(chan struct{}),
		files:        make(map[string]time.Time),
	}, nil
}

// Start performs an initial scan and launches the watch loop. The
// loop runs until ctx is cancelled.
func (s *Scanner) Start(ctx context.Context) error {
	if err := s.watcher.Add(s.root); err != nil {
		return fmt.Errorf("assets: watching %s: %w", s.root, err)
	}
	s.scan()
	go s.loop(ctx)
	return nil
}

// Done is closed when the watch loop has exited.
func (s *Scanner) Done() <-chan struct{} { return s.done }

// RequestScan queues a full rescan. Non-blocking; a scan already
// pending absorbs the request.
func (s *Scanner) RequestScan() {
	select {
	case s.scanRequests <- struct{}{}:
	default:
	}
}

// Reimport queues specific project-relative paths for reimport. The
// paths need not exist yet; missing ones are logged and skipped when
// the request drains.
func (s *Scanner) Reimport(paths []string) {
	copied := make([]string, len(paths))
	copy(copied, paths)
	select {
	case s.reimports <- copied:
	default:
		// Queue full: fold into a full rescan instead of blocking the
		// control goroutine.
		s.RequestScan()
	}
}

// Files returns the indexed project-relative paths, sorted.
func (s *Scanner) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.files))
	for path := range s.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ScanCount returns how many full scans have completed.
func (s *Scanner) ScanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scans
}

func (s *Scanner) loop(ctx context.Context) {
	defer close(s.done)
	defer s.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.scanRequests:
			s.scan()
		case paths := <-s.reimports:
			s.reimport(paths)
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.refresh(event.Name)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("asset watcher error", "error", err)
		}
	}
}

// scan rebuilds the file index from a full directory walk. Hidden
// directories (".stagehand", ".git") are skipped.
func (s *Scanner) scan() {
	files := make(map[string]time.Time)
	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != s.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			// Watch subdirectories so nested changes surface.
			if path != s.root {
				s.watcher.Add(path)
			}
			return nil
		}
		relative, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			return nil
		}
		files[filepath.ToSlash(relative)] = info.ModTime()
		return nil
	})
	if err != nil {
		s.logger.Warn("asset scan failed", "error", err)
		return
	}

	s.mu.Lock()
	s.files = files
	s.scans++
	count := len(files)
	s.mu.Unlock()

	s.logger.Debug("asset scan complete", "files", count)
}

// reimport refreshes index entries for the requested paths.
func (s *Scanner) reimport(paths []string) {
	for _, path := range paths {
		absolute := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(path, "res://")))
		s.refresh(absolute)
	}
	s.logger.Debug("reimport complete", "paths", len(paths))
}

// refresh updates one index entry from disk.
func (s *Scanner) refresh(absolute string) {
	relative, err := filepath.Rel(s.root, absolute)
	if err != nil || strings.HasPrefix(relative, "..") {
		return
	}
	key := filepath.ToSlash(relative)

	s.mu.Lock()
	defer s.mu.Unlock()

	info, statErr := os.Stat(absolute)
	if statErr != nil {
		delete(s.files, key)
		return
	}
	if info.IsDir() {
		return
	}
	s.files[key] = info.ModTime()
}
