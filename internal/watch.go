package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/mtlin/internal/syntax/ruby"
	tt "github.com/gnolang/mtlin/internal/types"
)

// debounce is how long the watcher waits after a write before linting, so
// that editors writing in several steps produce a single run.
const debounce = 100 * time.Millisecond

// OnIssues replaces the callback that receives the issues of every file
// re-linted in watch mode.
func (e *Engine) OnIssues(fn func(filename string, issues []tt.Issue)) {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if fn == nil {
		fn = e.reportIssues
	}
	e.onIssues = fn
}

// WatchDirs replaces the directories watched by StartWatching.
func (e *Engine) WatchDirs(dirs ...string) {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	e.watchDirs = dirs
}

func (e *Engine) StartWatching() error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.isWatching {
		return errors.New("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}

	for _, dir := range e.watchDirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.watcher = watcher
	e.isWatching = true
	e.watchDone = make(chan struct{})
	go e.watchLoop(watcher, e.watchDone)
	return nil
}

// StopWatching closes the watcher and waits for the watch loop to exit.
func (e *Engine) StopWatching() error {
	e.watchMu.Lock()
	if !e.isWatching {
		e.watchMu.Unlock()
		e.logger.Debug("not watching")
		return nil
	}
	e.isWatching = false
	watcher, done := e.watcher, e.watchDone
	e.watchMu.Unlock()

	err := watcher.Close()
	<-done
	return err
}

func (e *Engine) watchLoop(watcher *fsnotify.Watcher, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if filepath.Ext(event.Name) != ruby.Extension {
		return
	}

	// wait for a while after file change to consider multiple changes as one
	time.Sleep(debounce)
	issues, err := e.Run(event.Name)
	if err != nil {
		e.logger.Error("error linting changed file", zap.String("file", event.Name), zap.Error(err))
		return
	}

	e.watchMu.Lock()
	report := e.onIssues
	e.watchMu.Unlock()
	report(event.Name, issues)
}

func (e *Engine) reportIssues(filename string, issues []tt.Issue) {
	if len(issues) == 0 {
		e.logger.Info("no issues found", zap.String("file", filename))
		return
	}

	e.logger.Info("found issues", zap.String("file", filename), zap.Int("count", len(issues)))
	for _, issue := range issues {
		e.logger.Info(issue.Message,
			zap.String("rule", issue.Rule),
			zap.Int("line", issue.Start.Line),
			zap.Int("column", issue.Start.Column))
	}
}
