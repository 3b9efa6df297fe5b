package changefeed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishCoalesces(t *testing.T) {
	f := New()
	ch, stop := f.Watch("leads")
	defer stop()

	f.Publish("leads")
	f.Publish("leads")
	f.Publish("clients")

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single coalesced signal")
	default:
	}
}

func TestWatchStop(t *testing.T) {
	f := New()
	ch, stop := f.Watch("leads")
	require.Equal(t, 1, f.Watchers("leads"))

	stop()
	stop()
	assert.Equal(t, 0, f.Watchers("leads"))
	_, ok := <-ch
	assert.False(t, ok)

	f.Publish("leads")
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	f := New()
	var version atomic.Int64
	list := func(context.Context) ([]int64, error) {
		return []int64{version.Load()}, nil
	}

	got := make(chan []int64, 4)
	unsubscribe, err := Subscribe(context.Background(), f, "invoices", list,
		func(items []int64) { got <- items }, nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{0}, <-got)

	version.Store(1)
	f.Publish("invoices")
	select {
	case items := <-got:
		assert.Equal(t, []int64{1}, items)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after publish")
	}

	unsubscribe()
	assert.Eventually(t, func() bool { return f.Watchers("invoices") == 0 }, time.Second, 5*time.Millisecond)
}

func TestSubscribeInitialError(t *testing.T) {
	f := New()
	boom := errors.New("offline")
	list := func(context.Context) ([]string, error) { return nil, boom }

	_, err := Subscribe(context.Background(), f, "leads", list, func([]string) {}, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, f.Watchers("leads"))
}

func TestSubscribeReportsLaterErrors(t *testing.T) {
	f := New()
	var calls atomic.Int32
	list := func(context.Context) ([]string, error) {
		if calls.Add(1) > 1 {
			return nil, errors.New("read failed")
		}
		return []string{"a"}, nil
	}

	errs := make(chan error, 1)
	unsubscribe, err := Subscribe(context.Background(), f, "leads", list,
		func([]string) {}, func(err error) { errs <- err })
	require.NoError(t, err)
	defer unsubscribe()

	f.Publish("leads")
	select {
	case err := <-errs:
		assert.EqualError(t, err, "read failed")
	case <-time.After(time.Second):
		t.Fatal("error was not reported")
	}
}
