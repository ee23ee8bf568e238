// Package paginate implements the deferred pagination engine used by
// the scraping client: one buffered state machine per logical request,
// driven either by a blocking iterator or by a cooperative stream.
package paginate

import (
	"context"
	"errors"
	"fmt"
)

// Mode selects which driver a pager may be used with. A pager is
// created in one mode and using the other driver fails fast instead of
// corrupting the buffer.
type Mode int

const (
	ModeBlocking Mode = iota + 1
	ModeStream
)

func (m Mode) String() string {
	switch m {
	case ModeBlocking:
		return "blocking"
	case ModeStream:
		return "stream"
	default:
		return "unbound"
	}
}

// ErrIterationMode is returned when a pager created for one
// concurrency mode is driven through the other one.
var ErrIterationMode = errors.New("wrong iteration mode for this pager")

// Page is the result of one fetch against a paginated endpoint.
type Page[T any] struct {
	Items   []T
	Cursor  int64
	HasMore bool
}

// FetchFunc performs one page fetch at the given cursor. It must not
// retry and must report failures unchanged.
type FetchFunc[T any] func(ctx context.Context, cursor int64) (Page[T], error)

// source is the buffered state machine shared by the drivers.
type source[T any] interface {
	next(ctx context.Context) (T, bool, error)
	checkMode(Mode) error
	rewind()
}

// Pager owns the fetch state of one paginated stream: the buffered
// items, the read head, the server cursor and the has_more flag. It is
// exclusively owned by the consumer that created it and is not safe
// for concurrent use.
type Pager[T any] struct {
	mode    Mode
	fetch   FetchFunc[T]
	bind    func(T)
	buf     []T
	head    int
	cursor  int64
	hasMore bool
}

// NewPager creates a pager seeded at the given cursor. seed is the
// current time in milliseconds for feed-style endpoints and zero for
// offset-style ones. bind runs on every fetched item before it is
// buffered, associating it with the owning client; it may be nil only
// when the item type carries no lazy references.
func NewPager[T any](mode Mode, seed int64, fetch FetchFunc[T], bind func(T)) *Pager[T] {
	return &Pager[T]{
		mode:    mode,
		fetch:   fetch,
		bind:    bind,
		cursor:  seed,
		hasMore: true,
	}
}

func (p *Pager[T]) checkMode(m Mode) error {
	if p.mode != m {
		return fmt.Errorf("%w: pager is %s, driver is %s", ErrIterationMode, p.mode, m)
	}
	return nil
}

func (p *Pager[T]) rewind() { p.head = 0 }

// Cursor returns the current pagination cursor.
func (p *Pager[T]) Cursor() int64 { return p.cursor }

// HasMore reports whether the server has more pages. Once false it
// never flips back and no further fetch is attempted.
func (p *Pager[T]) HasMore() bool { return p.hasMore }

// Buffered returns the number of items fetched so far.
func (p *Pager[T]) Buffered() int { return len(p.buf) }

// advance performs exactly one fetch and applies it atomically: on
// success items are appended and cursor/has_more overwritten together;
// on failure none of the three change.
func (p *Pager[T]) advance(ctx context.Context) error {
	if !p.hasMore {
		return nil
	}
	page, err := p.fetch(ctx, p.cursor)
	if err != nil {
		return err
	}
	if p.bind != nil {
		for i := range page.Items {
			p.bind(page.Items[i])
		}
	}
	p.buf = append(p.buf, page.Items...)
	p.cursor = page.Cursor
	p.hasMore = page.HasMore
	return nil
}

func (p *Pager[T]) next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.head == len(p.buf) {
		if !p.hasMore {
			return zero, false, nil
		}
		if err := p.advance(ctx); err != nil {
			return zero, false, err
		}
		if p.head == len(p.buf) {
			// One fetch produced nothing new; end the stream
			// rather than spinning on the endpoint.
			return zero, false, nil
		}
	}
	out := p.buf[p.head]
	p.head++
	return out, true, nil
}

// DetailFunc looks up one full record by key.
type DetailFunc[T any] func(ctx context.Context, key string) (T, error)

// KeyPager shares the buffering contract of Pager but walks a fixed,
// finite key list instead of a server cursor: one detail lookup per
// key, done when the head reaches the end of the list.
type KeyPager[T any] struct {
	mode  Mode
	keys  []string
	fetch DetailFunc[T]
	bind  func(T)
	buf   []T
	head  int
}

func NewKeyPager[T any](mode Mode, keys []string, fetch DetailFunc[T], bind func(T)) *KeyPager[T] {
	return &KeyPager[T]{mode: mode, keys: keys, fetch: fetch, bind: bind}
}

func (p *KeyPager[T]) checkMode(m Mode) error {
	if p.mode != m {
		return fmt.Errorf("%w: pager is %s, driver is %s", ErrIterationMode, p.mode, m)
	}
	return nil
}

func (p *KeyPager[T]) rewind() { p.head = 0 }

// Remaining returns how many keys have not been looked up yet.
func (p *KeyPager[T]) Remaining() int { return len(p.keys) - len(p.buf) }

func (p *KeyPager[T]) next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.head == len(p.buf) {
		if p.head == len(p.keys) {
			return zero, false, nil
		}
		item, err := p.fetch(ctx, p.keys[p.head])
		if err != nil {
			return zero, false, err
		}
		if p.bind != nil {
			p.bind(item)
		}
		p.buf = append(p.buf, item)
	}
	out := p.buf[p.head]
	p.head++
	return out, true, nil
}
