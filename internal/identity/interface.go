package identity

import (
	"context"
	"errors"
)

var (
	ErrUnknownProvider = errors.New("unknown identity provider")
	ErrExchangeFailed  = errors.New("authorization code exchange failed")
)

// Profile is the identity returned by a social provider after a
// successful authorization-code exchange.
type Profile struct {
	Provider string
	Subject  string
	Email    string
	Nickname string
}

// Provider exchanges an authorization code for the member's profile.
type Provider interface {
	Exchange(ctx context.Context, provider, code string) (*Profile, error)
}
