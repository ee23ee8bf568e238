// Package signer turns a fully-parameterized but unsigned API URL
// into a fetched response. The site's anti-bot signature scheme is a
// black box; running the request inside the live browser session lets
// the site's own hooks apply it.
package signer

import (
	"context"

	"github.com/LouYuanbo1/tiktokagent/internal/infra/browser"
)

type Signer interface {
	// SignAndFetch executes the request with the session's signing
	// applied and returns the raw JSON body. No retries, no status
	// interpretation; failures propagate unchanged.
	SignAndFetch(ctx context.Context, url string) ([]byte, error)
}

type sessionSigner struct {
	session browser.Session
}

func InitSessionSigner(session browser.Session) Signer {
	return &sessionSigner{session: session}
}

func (s *sessionSigner) SignAndFetch(ctx context.Context, url string) ([]byte, error) {
	return s.session.Fetch(ctx, url)
}
