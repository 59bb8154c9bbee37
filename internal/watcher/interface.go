// Package watcher feeds media files dropped into a directory to a handler.
package watcher

import "context"

// Watcher defines the interface for file system monitoring
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles one media file
type EventHandler func(ctx context.Context, filePath string) error
