// Package log provides the slog setup of HotelLens with automatic
// redaction of sensitive values.
//
// SecureHandler wraps any slog.Handler and masks, before a record reaches
// the sink:
//   - HTTP headers such as Authorization, Cookie and X-Api-Key
//   - keys that name passwords, tokens, DSNs or connection URLs
//   - bearer and basic credentials, JWTs and private key blocks
//   - the password part of URL-shaped values, including inside error
//     messages ("redis://:secret@host" becomes "redis://:***REDACTED***@host")
//
// Site cookies and cache connection strings end up in debug output when
// --verbose is on; the handler keeps them out of shared logs.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, log.FormatText, verbose)
//	slog.SetDefault(logger)
package log
