// Package storage persists the client's credentials: the access token, the
// optional refresh token, and the serialized user record. It is the Go
// counterpart of the browser's local storage in the original platform.
//
// Only the session manager writes to a Store; other components read.
package storage

import "context"

// Store defines the interface for credential persistence.
//
// Absent values read back as zero values, not errors; errors are reserved
// for I/O failures. SaveCredentials implementations must persist the tokens
// before the user record so a partial write never leaves a user record
// without a matching token.
type Store interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	UserJSON(ctx context.Context) ([]byte, error)

	// SaveCredentials stores a full login result. An empty refresh token
	// removes any previously stored one.
	SaveCredentials(ctx context.Context, access, refresh string, userJSON []byte) error

	// SaveAccessToken replaces only the access token (token refresh path)
	SaveAccessToken(ctx context.Context, access string) error

	// SaveUser replaces only the serialized user record
	SaveUser(ctx context.Context, userJSON []byte) error

	// Clear removes all stored credentials; clearing an empty store is a no-op
	Clear(ctx context.Context) error
}
