package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Info is what can be read out of a token without trusting it.
type Info struct {
	IsJWT     bool
	Subject   string
	Username  string
	ExpiresAt time.Time
}

// Describe peeks into a JWT-shaped token for display ("signed in as ...").
// The signature is NOT verified and nothing here decides validity; opaque
// tokens return Info{IsJWT: false}.
func Describe(token string) Info {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}
	}

	info := Info{IsJWT: true}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	for _, key := range []string{"username", "preferred_username", "user_name"} {
		if v, ok := claims[key].(string); ok && v != "" {
			info.Username = v
			break
		}
	}
	if info.Username == "" {
		info.Username = info.Subject
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time.UTC()
	}
	return info
}
