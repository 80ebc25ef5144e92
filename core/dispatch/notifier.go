package dispatch

import (
	"context"
	"errors"
)

// FallbackNotifier receives the personalTokenFailed signal. It is called
// once per failed attempt made with the personal credential.
type FallbackNotifier interface {
	NotifyFallback(ctx context.Context) error
}

// NotifierFunc adapts a function to FallbackNotifier.
type NotifierFunc func(ctx context.Context) error

func (f NotifierFunc) NotifyFallback(ctx context.Context) error { return f(ctx) }

// MultiNotifier forwards the signal to every notifier and joins their
// errors.
type MultiNotifier []FallbackNotifier

func (m MultiNotifier) NotifyFallback(ctx context.Context) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyFallback(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
