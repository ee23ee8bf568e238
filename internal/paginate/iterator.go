package paginate

import "context"

// Iterator is the blocking driver: fetches run synchronously inside
// Next and the consumer loop is a plain for loop.
//
//	it := pager.Iter()
//	for it.Next(ctx) {
//		use(it.Item())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[T any] struct {
	src  source[T]
	cur  T
	err  error
	done bool
}

// Iter returns a blocking iterator over the pager. Starting a new
// iterator replays already-buffered items from the beginning, the way
// re-iterating any drained collection would.
func (p *Pager[T]) Iter() *Iterator[T] {
	p.rewind()
	return &Iterator[T]{src: p}
}

// Iter returns a blocking iterator over the key pager.
func (p *KeyPager[T]) Iter() *Iterator[T] {
	p.rewind()
	return &Iterator[T]{src: p}
}

// Next advances to the next item, fetching a page when the buffer is
// exhausted. It returns false at end-of-stream or on error; the two
// are told apart with Err. Calling Next after it returned false is a
// no-op and never triggers a fetch.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	if err := it.src.checkMode(ModeBlocking); err != nil {
		it.err = err
		return false
	}
	item, ok, err := it.src.next(ctx)
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		it.done = true
		return false
	}
	it.cur = item
	return true
}

// Item returns the item the last successful Next moved to.
func (it *Iterator[T]) Item() T { return it.cur }

// Err returns the error that ended iteration, if any.
func (it *Iterator[T]) Err() error { return it.err }

// Collect drains up to limit items (limit <= 0 means no limit).
func (it *Iterator[T]) Collect(ctx context.Context, limit int) ([]T, error) {
	var out []T
	for it.Next(ctx) {
		out = append(out, it.Item())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, it.Err()
}
