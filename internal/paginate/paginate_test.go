package paginate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// pagedFetch serves canned pages in order and counts calls.
type pagedFetch struct {
	pages []Page[int]
	calls int
}

func (f *pagedFetch) fetch(ctx context.Context, cursor int64) (Page[int], error) {
	if f.calls >= len(f.pages) {
		return Page[int]{}, errors.New("fetched past the last page")
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestIteratorDrainsAllPagesInOrder(t *testing.T) {
	f := &pagedFetch{pages: []Page[int]{
		{Items: []int{1, 2, 3}, Cursor: 10, HasMore: true},
		{Items: []int{4}, Cursor: 20, HasMore: false},
	}}
	p := NewPager(ModeBlocking, 0, f.fetch, nil)

	it := p.Iter()
	var got []int
	for it.Next(context.Background()) {
		got = append(got, it.Item())
	}
	require.NoError(t, it.Err())
	require.Equal(t, []int{1, 2, 3, 4}, got)
	require.Equal(t, 2, f.calls)

	// Terminal state is idempotent and never fetches again.
	require.False(t, it.Next(context.Background()))
	require.False(t, it.Next(context.Background()))
	require.Equal(t, 2, f.calls)
	require.False(t, p.HasMore())
	require.EqualValues(t, 20, p.Cursor())
}

func TestPagerCursorFollowsServer(t *testing.T) {
	f := &pagedFetch{pages: []Page[int]{
		{Items: []int{1}, Cursor: 77, HasMore: true},
		{Items: []int{2}, Cursor: 99, HasMore: false},
	}}
	p := NewPager(ModeBlocking, 5, f.fetch, nil)
	require.EqualValues(t, 5, p.Cursor())

	it := p.Iter()
	require.True(t, it.Next(context.Background()))
	require.EqualValues(t, 77, p.Cursor())
	require.True(t, it.Next(context.Background()))
	require.EqualValues(t, 99, p.Cursor())
}

func TestPagerFetchErrorLeavesStateUntouched(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	fetch := func(ctx context.Context, cursor int64) (Page[int], error) {
		calls++
		if calls == 1 {
			return Page[int]{Items: []int{1}, Cursor: 50, HasMore: true}, nil
		}
		return Page[int]{}, boom
	}
	p := NewPager(ModeBlocking, 0, fetch, nil)

	it := p.Iter()
	require.True(t, it.Next(context.Background()))
	require.False(t, it.Next(context.Background()))
	require.ErrorIs(t, it.Err(), boom)

	// Buffer, cursor and has_more survive the failed fetch; a fresh
	// iterator replays the buffered item and can retry the fetch.
	require.EqualValues(t, 50, p.Cursor())
	require.True(t, p.HasMore())
	require.Equal(t, 1, p.Buffered())
}

func TestPagerEndsOnEmptyPage(t *testing.T) {
	f := &pagedFetch{pages: []Page[int]{
		{Items: nil, Cursor: 10, HasMore: true},
	}}
	p := NewPager(ModeBlocking, 0, f.fetch, nil)

	it := p.Iter()
	require.False(t, it.Next(context.Background()))
	require.NoError(t, it.Err())
	require.Equal(t, 1, f.calls)
}

func TestPagerBindsEveryItem(t *testing.T) {
	f := &pagedFetch{pages: []Page[int]{
		{Items: []int{1, 2}, Cursor: 0, HasMore: false},
	}}
	var bound []int
	p := NewPager(ModeBlocking, 0, f.fetch, func(v int) { bound = append(bound, v) })

	_, err := p.Iter().Collect(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, bound)
}

func TestModeMismatchFailsFast(t *testing.T) {
	f := &pagedFetch{pages: []Page[int]{
		{Items: []int{1}, Cursor: 0, HasMore: false},
	}}

	t.Run("stream pager with blocking driver", func(t *testing.T) {
		p := NewPager(ModeStream, 0, f.fetch, nil)
		it := p.Iter()
		require.False(t, it.Next(context.Background()))
		require.ErrorIs(t, it.Err(), ErrIterationMode)
		require.Equal(t, 0, f.calls)
	})

	t.Run("blocking pager with stream driver", func(t *testing.T) {
		p := NewPager(ModeBlocking, 0, f.fetch, nil)
		_, err := p.Stream(context.Background())
		require.ErrorIs(t, err, ErrIterationMode)
		require.Equal(t, 0, f.calls)
	})
}

func TestStreamDeliversAllItems(t *testing.T) {
	f := &pagedFetch{pages: []Page[int]{
		{Items: []int{1, 2}, Cursor: 10, HasMore: true},
		{Items: []int{3}, Cursor: 20, HasMore: false},
	}}
	p := NewPager(ModeStream, 0, f.fetch, nil)

	st, err := p.Stream(context.Background())
	require.NoError(t, err)
	var got []int
	for v := range st.Items() {
		got = append(got, v)
	}
	require.NoError(t, st.Err())
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestStreamSurfacesFetchError(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(ctx context.Context, cursor int64) (Page[int], error) {
		return Page[int]{}, boom
	}
	p := NewPager(ModeStream, 0, fetch, nil)

	st, err := p.Stream(context.Background())
	require.NoError(t, err)
	for range st.Items() {
		t.Fatal("no items expected")
	}
	require.ErrorIs(t, st.Err(), boom)
}

func TestStreamStopsOnCancel(t *testing.T) {
	fetch := func(ctx context.Context, cursor int64) (Page[int], error) {
		return Page[int]{Items: []int{1, 2, 3}, Cursor: cursor + 1, HasMore: true}, nil
	}
	p := NewPager(ModeStream, 0, fetch, nil)

	ctx, cancel := context.WithCancel(context.Background())
	st, err := p.Stream(ctx)
	require.NoError(t, err)
	<-st.Items()
	cancel()
	require.ErrorIs(t, st.Err(), context.Canceled)
}

func TestKeyPagerLooksUpEachKeyOnce(t *testing.T) {
	var looked []string
	fetch := func(ctx context.Context, key string) (string, error) {
		looked = append(looked, key)
		return "v:" + key, nil
	}
	p := NewKeyPager(ModeBlocking, []string{"a", "b", "c"}, fetch, nil)
	require.Equal(t, 3, p.Remaining())

	got, err := p.Iter().Collect(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"v:a", "v:b", "v:c"}, got)
	require.Equal(t, []string{"a", "b", "c"}, looked)
	require.Equal(t, 0, p.Remaining())

	// A second pass serves the buffer without new lookups.
	again, err := p.Iter().Collect(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, got, again)
	require.Len(t, looked, 3)
}

func TestKeyPagerLookupErrorIsRetryable(t *testing.T) {
	boom := errors.New("boom")
	fail := true
	fetch := func(ctx context.Context, key string) (string, error) {
		if key == "b" && fail {
			fail = false
			return "", boom
		}
		return "v:" + key, nil
	}
	p := NewKeyPager(ModeBlocking, []string{"a", "b"}, fetch, nil)

	it := p.Iter()
	require.True(t, it.Next(context.Background()))
	require.False(t, it.Next(context.Background()))
	require.ErrorIs(t, it.Err(), boom)

	// The failed key was not consumed; a fresh pass retries it.
	got, err := p.Iter().Collect(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"v:a", "v:b"}, got)
}

func TestKeyPagerStream(t *testing.T) {
	fetch := func(ctx context.Context, key string) (string, error) {
		return "v:" + key, nil
	}
	p := NewKeyPager(ModeStream, []string{"x", "y"}, fetch, nil)

	st, err := p.Stream(context.Background())
	require.NoError(t, err)
	var got []string
	for v := range st.Items() {
		got = append(got, v)
	}
	require.NoError(t, st.Err())
	require.Equal(t, []string{"v:x", "v:y"}, got)
}
