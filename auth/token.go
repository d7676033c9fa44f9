package auth

import (
	"strings"

	"github.com/couchbaselabs/s3lite/objstore/objerr"
)

// extractToken pulls the bearer token out of an 'Authorization' header value.
//
// Two forms are accepted; the plain 'Bearer <token>' form, and an AWS SigV4 header with the token smuggled through the
// access key slot ('AWS4-HMAC-SHA256 Credential=<token>/...'). The latter lets stock AWS SDK clients authenticate by
// supplying the token as their access key id, the signature bytes beyond that slot are ignored.
func extractToken(header string) (string, error) {
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return token, nil
	}

	if !strings.HasPrefix(header, "AWS4-HMAC-SHA256 ") {
		return "", objerr.ErrUnauthorized
	}

	_, rest, ok := strings.Cut(header, "Credential=")
	if !ok {
		return "", objerr.ErrUnauthorized
	}

	token, _, _ := strings.Cut(rest, "/")
	if token == "" {
		return "", objerr.ErrUnauthorized
	}

	return token, nil
}
