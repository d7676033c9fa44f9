package objerr

import (
	"errors"
	"net/http"
)

// Error is the S3 wire representation of an error; the code/message pair rendered into the XML error envelope, and
// the HTTP status the response carries.
type Error struct {
	Code    string
	Message string
	Status  int
}

// From converts the given error into its S3 wire representation. Unrecognized errors map to 'InternalError' without
// leaking any internal detail; callers are expected to have logged the underlying error.
func From(err error) Error {
	var (
		notFoundError        *NotFoundError
		invalidArgumentError *InvalidArgumentError
		invalidPartError     *InvalidPartError
		unimplementedOpError *UnimplementedOperationError
	)

	switch {
	case errors.Is(err, ErrUnauthorized):
		return Error{
			Code:    "Unauthorized",
			Message: "Missing or invalid authorization credentials.",
			Status:  http.StatusUnauthorized,
		}
	case errors.Is(err, ErrForbidden):
		return Error{
			Code:    "Forbidden",
			Message: "Access to the requested bucket is forbidden.",
			Status:  http.StatusForbidden,
		}
	case errors.As(err, &notFoundError):
		return notFoundError.wire()
	case errors.As(err, &invalidArgumentError):
		return Error{
			Code:    "InvalidArgument",
			Message: invalidArgumentError.Reason,
			Status:  http.StatusBadRequest,
		}
	case errors.As(err, &invalidPartError):
		return Error{
			Code: "InvalidPart",
			Message: "One or more of the specified parts could not be found. The part may not have been uploaded, " +
				"or the specified entity tag may not match the part's entity tag.",
			Status: http.StatusBadRequest,
		}
	case errors.As(err, &unimplementedOpError):
		return Error{
			Code:    "NotImplemented",
			Message: "A header or query you provided implies functionality that is not implemented.",
			Status:  http.StatusNotImplemented,
		}
	}

	return Error{
		Code:    "InternalError",
		Message: "We encountered an internal error. Please try again.",
		Status:  http.StatusInternalServerError,
	}
}

// wire returns the S3 wire representation of the not found error; which of the 'NoSuch*' codes is emitted depends on
// the type of the thing which was not found.
func (e *NotFoundError) wire() Error {
	switch e.Type {
	case "bucket":
		return Error{
			Code:    "NoSuchBucket",
			Message: "The specified bucket does not exist.",
			Status:  http.StatusNotFound,
		}
	case "upload":
		return Error{
			Code: "NoSuchUpload",
			Message: "The specified multipart upload does not exist. The upload ID may be invalid, or the upload " +
				"may have been aborted or completed.",
			Status: http.StatusNotFound,
		}
	}

	return Error{
		Code:    "NoSuchKey",
		Message: "The specified key does not exist.",
		Status:  http.StatusNotFound,
	}
}
