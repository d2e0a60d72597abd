package paging

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serverOf simulates a backend holding n ordered items
func serverOf(n int) (FetchFunc[string], *int32) {
	var calls int32
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item-%03d", i)
	}
	return func(_ context.Context, limit, offset int) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		if offset >= len(items) {
			return []string{}, nil
		}
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		return append([]string(nil), items[offset:end]...), nil
	}, &calls
}

func drain(t *testing.T, l *List[string]) {
	t.Helper()
	require.NoError(t, l.Reset(context.Background()))
	for {
		fetched, err := l.LoadMore(context.Background())
		require.NoError(t, err)
		if !fetched {
			return
		}
	}
}

func TestList_FetchesUntilShortPage(t *testing.T) {
	tests := []struct {
		total, pageSize, wantRequests int
	}{
		{total: 0, pageSize: 12, wantRequests: 1},
		{total: 5, pageSize: 12, wantRequests: 1},
		{total: 13, pageSize: 12, wantRequests: 2},
		{total: 50, pageSize: 12, wantRequests: 5},
		{total: 41, pageSize: 20, wantRequests: 3},
		// An exact multiple needs one empty page to learn the end
		{total: 24, pageSize: 12, wantRequests: 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_by_%d", tt.total, tt.pageSize), func(t *testing.T) {
			fetch, calls := serverOf(tt.total)
			l := New("test", tt.pageSize, fetch, nil)

			drain(t, l)

			items := l.Items()
			require.Len(t, items, tt.total)
			for i, it := range items {
				assert.Equal(t, fmt.Sprintf("item-%03d", i), it, "server order")
			}
			assert.Equal(t, tt.wantRequests, int(atomic.LoadInt32(calls)))
			assert.Equal(t, tt.wantRequests, l.State().Requests)
			assert.False(t, l.State().HasMore)
		})
	}
}

func TestList_RequestsMatchCeilWhenNotExactMultiple(t *testing.T) {
	for total := 1; total <= 100; total++ {
		const pageSize = 12
		if total%pageSize == 0 {
			continue
		}
		fetch, calls := serverOf(total)
		l := New("ceil", pageSize, fetch, nil)
		drain(t, l)

		want := (total + pageSize - 1) / pageSize
		assert.Equal(t, want, int(atomic.LoadInt32(calls)), "total %d", total)
		assert.Len(t, l.Items(), total)
	}
}

func TestList_ResetReplacesContents(t *testing.T) {
	fetch, _ := serverOf(30)
	l := New("reset", 12, fetch, nil)
	drain(t, l)
	require.Len(t, l.Items(), 30)

	require.NoError(t, l.Reset(context.Background()))
	items := l.Items()
	assert.Len(t, items, 12)
	assert.Equal(t, "item-000", items[0])
	assert.True(t, l.State().HasMore)
}

func TestList_OneFetchInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	var calls int32

	fetch := func(_ context.Context, limit, offset int) ([]int, error) {
		atomic.AddInt32(&calls, 1)
		if offset > 0 {
			started <- struct{}{}
			<-release
		}
		out := make([]int, limit)
		for i := range out {
			out[i] = offset + i
		}
		return out, nil
	}
	l := New("inflight", 5, fetch, nil)
	require.NoError(t, l.Reset(context.Background()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		fetched, err := l.LoadMore(context.Background())
		assert.True(t, fetched)
		assert.NoError(t, err)
	}()
	<-started

	// The sentinel fires again while the page is loading
	fetched, err := l.LoadMore(context.Background())
	assert.False(t, fetched)
	assert.NoError(t, err)
	assert.True(t, l.State().LoadingMore)

	close(release)
	<-done

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Len(t, l.Items(), 10)
}

func TestList_StalePageAfterResetIsDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var blockNext atomic.Bool

	fetch := func(_ context.Context, limit, offset int) ([]string, error) {
		if offset > 0 && blockNext.Load() {
			close(started)
			<-release
			return []string{"stale-1", "stale-2"}, nil
		}
		out := make([]string, limit)
		for i := range out {
			out[i] = fmt.Sprintf("fresh-%d", offset+i)
		}
		return out, nil
	}

	l := New[string]("stale", 2, fetch, nil)
	require.NoError(t, l.Reset(context.Background()))

	blockNext.Store(true)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fetched, err := l.LoadMore(context.Background())
		assert.False(t, fetched, "superseded page reports nothing applied")
		assert.NoError(t, err)
	}()
	<-started

	blockNext.Store(false)
	require.NoError(t, l.Reset(context.Background()))
	close(release)
	<-done

	assert.Equal(t, []string{"fresh-0", "fresh-1"}, l.Items())
}

func TestList_ErrorReportsOnceAndKeepsItems(t *testing.T) {
	var reported int
	fail := false
	fetch := func(_ context.Context, limit, offset int) ([]string, error) {
		if fail {
			return nil, errors.New("HTTP 502")
		}
		return make([]string, limit), nil
	}

	l := New("errors", 3, fetch, func(error) { reported++ })
	require.NoError(t, l.Reset(context.Background()))

	fail = true
	fetched, err := l.LoadMore(context.Background())
	assert.True(t, fetched)
	assert.EqualError(t, err, "HTTP 502")
	assert.Equal(t, 1, reported)
	assert.Len(t, l.Items(), 3)
	assert.False(t, l.State().LoadingMore)
	assert.True(t, l.State().HasMore, "a failed page can be retried")
}

func TestList_ClosedListIgnoresLateResponses(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fetch := func(_ context.Context, limit, offset int) ([]string, error) {
		close(started)
		<-release
		return []string{"late"}, nil
	}

	l := New("closed", 10, fetch, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, l.Reset(context.Background()))
	}()
	<-started

	l.Close()
	close(release)
	<-done

	assert.Empty(t, l.Items())
	fetched, err := l.LoadMore(context.Background())
	assert.False(t, fetched)
	assert.NoError(t, err)
}

func TestList_ClearForgetsEverything(t *testing.T) {
	fetch, _ := serverOf(40)
	l := New("clear", 10, fetch, nil)
	require.NoError(t, l.Reset(context.Background()))
	l.Clear()

	assert.Empty(t, l.Items())
	assert.True(t, l.State().HasMore)
}
