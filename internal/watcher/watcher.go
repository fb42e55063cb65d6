// Package watcher turns filesystem activity in a photo directory into
// debounced reorganize runs.
package watcher

import (
	"context"
	"fmt"

	"github.com/Nomadcxx/teamsort/internal/logging"
	"github.com/fsnotify/fsnotify"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
	EventMove   EventType = "move"
	EventDelete EventType = "delete"
)

type FileEvent struct {
	Type EventType
	Path string
}

type Handler interface {
	HandleFileEvent(event FileEvent) error
}

// Watcher forwards events for a set of directories to a Handler. Watches
// are not recursive: team subdirectories are where photos end up, and
// activity there must not trigger another run.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	logger    *logging.Logger
}

type Option func(*Watcher)

func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func NewWatcher(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.logger.Info("watcher", "Watching", logging.F("path", path))
	}
	return nil
}

// Start delivers events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if err := w.handleEvent(event); err != nil {
				w.logger.Error("watcher", "Error handling event", err, logging.F("path", event.Name))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Warn("watcher", "Watcher error", logging.F("error", err.Error()))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) error {
	var eventType EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Op.Has(fsnotify.Write):
		eventType = EventWrite
	case event.Op.Has(fsnotify.Rename):
		eventType = EventMove
	case event.Op.Has(fsnotify.Remove):
		eventType = EventDelete
	default:
		// chmod only
		return nil
	}

	w.logger.Debug("watcher", "Event",
		logging.F("type", string(eventType)),
		logging.F("path", event.Name))

	return w.handler.HandleFileEvent(FileEvent{Type: eventType, Path: event.Name})
}
