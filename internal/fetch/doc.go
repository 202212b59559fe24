// Package fetch downloads HTML over plain HTTP and falls back to a
// headless browser when a site answers with a bot-protection page.
//
// The Fetcher sends browser-like headers, bounds every request with a
// timeout and a body size limit, and never treats an HTTP error status as
// fatal: the body is returned either way because block pages often carry
// a 403 or 503 and still need to be inspected. Only transport failures
// (DNS, refused connections, timeouts) are errors, and they wrap
// ErrTransport so callers can degrade to "no data".
//
// Outbound traffic can be routed through a SOCKS5 or HTTP proxy, and
// per-site headers and cookies are injected at the transport level.
package fetch
