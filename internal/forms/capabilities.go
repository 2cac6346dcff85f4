package forms

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
)

// Notifier surfaces a message to the user (flash, toast, websocket event, log line).
type Notifier interface {
	Notify(ctx context.Context, message string)
}

type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) {
	f(ctx, message)
}

// NotifyAll fans a message out to every notifier in order.
func NotifyAll(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, message string) {
		for _, n := range notifiers {
			n.Notify(ctx, message)
		}
	})
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, string) {}

// LogNotifier writes acknowledgments to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, message string) {
	n.Logger.InfoContext(ctx, "form notification", "message", message)
}

// IDGenerator produces human-readable confirmation numbers.
type IDGenerator interface {
	NextID() int
}

type IDGeneratorFunc func() int

func (f IDGeneratorFunc) NextID() int {
	return f()
}

// RandomIDs draws uniformly from [min, max].
func RandomIDs(min, max int) IDGenerator {
	return IDGeneratorFunc(func() int {
		return min + rand.IntN(max-min+1)
	})
}

// SequenceIDs counts up from start. Safe for concurrent use.
func SequenceIDs(start int) IDGenerator {
	var n atomic.Int64
	n.Store(int64(start) - 1)
	return IDGeneratorFunc(func() int {
		return int(n.Add(1))
	})
}
