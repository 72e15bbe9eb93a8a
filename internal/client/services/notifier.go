package services

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a one-line, user-visible message.
type Notification struct {
	Level   Level
	Message string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// WriterNotifier prints notifications as lines to w.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prefix := "*"
	switch note.Level {
	case LevelSuccess:
		prefix = "✓"
	case LevelError:
		prefix = "✗"
	}
	fmt.Fprintf(n.w, "%s %s\n", prefix, note.Message)
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notification) {}
