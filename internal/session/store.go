// Package session holds the single bearer-token slot the gateway and the CLI
// authenticate with.
package session

// TokenKey names the slot: the cookie name for browsers, the row key for the CLI.
const TokenKey = "authToken"

// Store is a slot holding at most one token. Implementations never fail:
// an unavailable backing store reads as "no token".
type Store interface {
	Get() (string, bool)
	Set(token string)
	Clear()
}

// Token returns the stored token, treating a nil store as empty.
func Token(s Store) (string, bool) {
	if s == nil {
		return "", false
	}
	return s.Get()
}
