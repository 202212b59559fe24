package fetch

import "errors"

var (
	// ErrTransport is returned when a request could not be completed:
	// DNS failure, refused connection, timeout or a broken body.
	ErrTransport = errors.New("transport failure")

	// ErrInvalidProxy is returned when a proxy URL has an unsupported
	// scheme or cannot be parsed.
	ErrInvalidProxy = errors.New("invalid proxy URL: expected socks5://, http:// or https://")
)
