// Package changefeed lets in-process repositories tell subscribers that a
// collection changed.
package changefeed

import (
	"context"
	"sync"
)

// Feed fans out change signals per collection. Signals are coalesced: a
// watcher that has not consumed the previous signal gets no second one.
type Feed struct {
	mu       sync.Mutex
	watchers map[string]map[chan struct{}]struct{}
}

// New constructs a feed.
func New() *Feed {
	return &Feed{watchers: make(map[string]map[chan struct{}]struct{})}
}

// Watch registers a watcher for collection. The returned func removes it
// and closes the channel.
func (f *Feed) Watch(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	if f.watchers[collection] == nil {
		f.watchers[collection] = make(map[chan struct{}]struct{})
	}
	f.watchers[collection][ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.watchers[collection], ch)
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Publish signals every watcher of collection.
func (f *Feed) Publish(collection string) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.watchers[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watchers returns how many watchers collection has.
func (f *Feed) Watchers(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers[collection])
}

// Subscribe implements the repository Subscribe contract on top of a feed:
// it delivers list's result once, then again after every published change.
// The watcher is registered before the first read so no change is missed.
func Subscribe[T any](
	ctx context.Context,
	f *Feed,
	collection string,
	list func(context.Context) ([]T, error),
	onData func([]T),
	onError func(error),
) (func(), error) {
	signals, unwatch := f.Watch(collection)

	items, err := list(ctx)
	if err != nil {
		unwatch()
		return nil, err
	}
	onData(items)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer unwatch()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				items, err := list(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					if onError != nil {
						onError(err)
					}
					continue
				}
				onData(items)
			}
		}
	}()

	return cancel, nil
}
