package paginate

import "context"

// Stream is the cooperative driver: a single goroutine walks the same
// state machine and parks on the channel send between items, so the
// consumer schedules progress by receiving. No two steps for one pager
// ever run concurrently.
//
//	st, err := pager.Stream(ctx)
//	for item := range st.Items() {
//		use(item)
//	}
//	if err := st.Err(); err != nil { ... }
//
// Cancel ctx to stop a stream that is not going to be drained,
// otherwise the driver goroutine stays parked on the send.
type Stream[T any] struct {
	items chan T
	done  chan struct{}
	err   error
}

// Stream starts the cooperative driver over the pager.
func (p *Pager[T]) Stream(ctx context.Context) (*Stream[T], error) {
	return startStream[T](ctx, p)
}

// Stream starts the cooperative driver over the key pager.
func (p *KeyPager[T]) Stream(ctx context.Context) (*Stream[T], error) {
	return startStream[T](ctx, p)
}

func startStream[T any](ctx context.Context, src source[T]) (*Stream[T], error) {
	if err := src.checkMode(ModeStream); err != nil {
		return nil, err
	}
	src.rewind()
	s := &Stream[T]{
		items: make(chan T),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(s.items)
		defer close(s.done)
		for {
			item, ok, err := src.next(ctx)
			if err != nil {
				s.err = err
				return
			}
			if !ok {
				return
			}
			select {
			case s.items <- item:
			case <-ctx.Done():
				s.err = ctx.Err()
				return
			}
		}
	}()
	return s, nil
}

// Items is the channel the driver delivers on; it closes at
// end-of-stream, on error, and on cancellation.
func (s *Stream[T]) Items() <-chan T { return s.items }

// Err blocks until the driver has stopped and returns the error that
// ended the stream, if any.
func (s *Stream[T]) Err() error {
	<-s.done
	return s.err
}
