package objerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	type test struct {
		name     string
		err      error
		expected Error
	}

	tests := []*test{
		{
			name: "Unauthorized",
			err:  ErrUnauthorized,
			expected: Error{
				Code:    "Unauthorized",
				Message: "Missing or invalid authorization credentials.",
				Status:  http.StatusUnauthorized,
			},
		},
		{
			name: "UnauthorizedWrapped",
			err:  fmt.Errorf("failed to verify token: %w", ErrUnauthorized),
			expected: Error{
				Code:    "Unauthorized",
				Message: "Missing or invalid authorization credentials.",
				Status:  http.StatusUnauthorized,
			},
		},
		{
			name: "Forbidden",
			err:  ErrForbidden,
			expected: Error{
				Code:    "Forbidden",
				Message: "Access to the requested bucket is forbidden.",
				Status:  http.StatusForbidden,
			},
		},
		{
			name: "NoSuchKey",
			err:  &NotFoundError{Type: "key", Name: "object.txt"},
			expected: Error{
				Code:    "NoSuchKey",
				Message: "The specified key does not exist.",
				Status:  http.StatusNotFound,
			},
		},
		{
			name: "NoSuchBucket",
			err:  &NotFoundError{Type: "bucket", Name: "bucket"},
			expected: Error{
				Code:    "NoSuchBucket",
				Message: "The specified bucket does not exist.",
				Status:  http.StatusNotFound,
			},
		},
		{
			name: "NoSuchUpload",
			err:  &NotFoundError{Type: "upload", Name: "upload-id"},
			expected: Error{
				Code: "NoSuchUpload",
				Message: "The specified multipart upload does not exist. The upload ID may be invalid, or the " +
					"upload may have been aborted or completed.",
				Status: http.StatusNotFound,
			},
		},
		{
			name: "InvalidArgument",
			err:  &InvalidArgumentError{Reason: "Copy source bucket must match the destination bucket"},
			expected: Error{
				Code:    "InvalidArgument",
				Message: "Copy source bucket must match the destination bucket",
				Status:  http.StatusBadRequest,
			},
		},
		{
			name: "InvalidPart",
			err:  &InvalidPartError{UploadID: "upload-id"},
			expected: Error{
				Code: "InvalidPart",
				Message: "One or more of the specified parts could not be found. The part may not have been " +
					"uploaded, or the specified entity tag may not match the part's entity tag.",
				Status: http.StatusBadRequest,
			},
		},
		{
			name: "NotImplemented",
			err:  &UnimplementedOperationError{Name: "POST /bucket"},
			expected: Error{
				Code:    "NotImplemented",
				Message: "A header or query you provided implies functionality that is not implemented.",
				Status:  http.StatusNotImplemented,
			},
		},
		{
			name: "UnknownInternalError",
			err:  errors.New("sqlite blew up"),
			expected: Error{
				Code:    "InternalError",
				Message: "We encountered an internal error. Please try again.",
				Status:  http.StatusInternalServerError,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, From(test.err))
		})
	}
}

func TestIsNotFoundError(t *testing.T) {
	err := fmt.Errorf("failed to get object: %w", &NotFoundError{Type: "key", Name: "object.txt"})
	require.True(t, IsNotFoundError(err))
	require.False(t, IsNotFoundError(errors.New("not found")))
}
