package model

import (
	"context"
	"errors"
)

// ErrNotBound is returned when a lazy lookup is attempted on a record
// that was never associated with an owning client.
var ErrNotBound = errors.New("record is not bound to a client")

// Resolver is the slice of the API client the lazy handles need. The
// client in internal/service/scrape implements it.
type Resolver interface {
	ResolveUser(ctx context.Context, uniqueID string) (*User, error)
	ResolveVideo(ctx context.Context, id int64) (*Video, error)
	ResolveChallenge(ctx context.Context, name string) (*Challenge, error)
}

// UserGetter is a lazily-resolved handle to a user, bound to one
// (client, unique id) pair. The first Resolve hits the network, later
// calls return the cached record. Not safe for concurrent use, same as
// the iterators that hand these out.
type UserGetter struct {
	resolver Resolver
	uniqueID string
	cached   *User
}

func NewUserGetter(r Resolver, uniqueID string) *UserGetter {
	return &UserGetter{resolver: r, uniqueID: uniqueID}
}

func (g *UserGetter) UniqueID() string { return g.uniqueID }

func (g *UserGetter) Resolve(ctx context.Context) (*User, error) {
	if g.cached != nil {
		return g.cached, nil
	}
	if g.resolver == nil {
		return nil, ErrNotBound
	}
	user, err := g.resolver.ResolveUser(ctx, g.uniqueID)
	if err != nil {
		return nil, err
	}
	g.cached = user
	return user, nil
}
