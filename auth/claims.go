package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the claim set carried by accepted tokens; the registered claims plus the bucket the token grants access
// to.
type Claims struct {
	// Bucket is the sole bucket the token holder may operate on.
	Bucket string `json:"bucket"`

	jwt.RegisteredClaims
}

// require validates that the claims the engine relies upon are present; expiry itself is validated during parsing.
func (c *Claims) require() error {
	switch {
	case c.Subject == "":
		return errors.New("token missing 'sub' claim")
	case c.Bucket == "":
		return errors.New("token missing 'bucket' claim")
	case c.ExpiresAt == nil:
		return errors.New("token missing 'exp' claim")
	}

	return nil
}
