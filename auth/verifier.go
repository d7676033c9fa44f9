// Package auth verifies the credentials presented on incoming requests; a bearer token carrying signed claims which
// bind the caller to a single bucket.
package auth

import (
	"errors"
	"log/slog"

	"github.com/couchbaselabs/s3lite/objstore/objerr"

	"github.com/golang-jwt/jwt/v4"
)

// Verifier authenticates request credentials against a set of accepted signing secrets.
type Verifier struct {
	secrets  [][]byte
	devToken string
	logger   *slog.Logger
}

// VerifierOptions encapsulates the options available when creating a new verifier.
type VerifierOptions struct {
	// Secrets are the accepted HMAC signing secrets; verification tries each in turn, so tokens issued against a prior
	// secret remain valid whilst a rotation is in flight.
	//
	// NOTE: Required, unless a development token is configured.
	Secrets []string

	// DevToken, when non-empty, is a literal token accepted without verification and valid against any bucket.
	//
	// NOTE: Development affordance, leave empty in production deployments.
	DevToken string

	// Logger is the passed logger which implements a custom Log method
	Logger *slog.Logger
}

// defaults fills any missing attributes to a sane default.
func (v *VerifierOptions) defaults() {
	if v.Logger == nil {
		v.Logger = slog.Default()
	}
}

// NewVerifier creates a new verifier accepting tokens signed by any of the given secrets.
func NewVerifier(options VerifierOptions) *Verifier {
	// Fill out any missing fields with the sane defaults
	options.defaults()

	verifier := Verifier{
		secrets:  make([][]byte, 0, len(options.Secrets)),
		devToken: options.DevToken,
		logger:   options.Logger,
	}

	for _, secret := range options.Secrets {
		verifier.secrets = append(verifier.secrets, []byte(secret))
	}

	return &verifier
}

// Verify authenticates the given 'Authorization' header value against the bucket being accessed.
//
// Returns 'objerr.ErrUnauthorized' where no valid token is presented, and 'objerr.ErrForbidden' where a valid token is
// bound to another bucket.
func (v *Verifier) Verify(header, bucket string) error {
	token, err := extractToken(header)
	if err != nil {
		return err
	}

	if v.devToken != "" && token == v.devToken {
		return nil
	}

	claims, err := v.parse(token)
	if err != nil {
		v.logger.Debug("rejected token", "error", err)
		return objerr.ErrUnauthorized
	}

	if claims.Bucket != bucket {
		return objerr.ErrForbidden
	}

	return nil
}

// parse verifies the signature of the given token against each accepted secret in turn, returning the claims of the
// first which validates.
func (v *Verifier) parse(token string) (*Claims, error) {
	var last error

	for _, secret := range v.secrets {
		claims := &Claims{}

		_, err := jwt.ParseWithClaims(
			token,
			claims,
			func(_ *jwt.Token) (any, error) { return secret, nil },
			jwt.WithValidMethods([]string{"HS256"}),
		)
		if err != nil {
			last = err
			continue
		}

		// A valid signature means this was the signing secret, problems with the claims themselves won't be resolved
		// by trying another
		err = claims.require()
		if err != nil {
			return nil, err
		}

		return claims, nil
	}

	if last == nil {
		last = errors.New("no accepted secrets configured")
	}

	return nil, last
}
