package objrest

import (
	"encoding/xml"
	"net/http"
	"strconv"

	"github.com/couchbaselabs/s3lite/objstore/objerr"
	"github.com/couchbaselabs/s3lite/objstore/objval"
)

const (
	headerRequestID  = "x-amz-request-id"
	headerCopySource = "x-amz-copy-source"
)

// quoteETag wraps an entity tag in the double quotes S3 carries them in.
func quoteETag(etag string) string {
	return `"` + etag + `"`
}

// writeObjectHeaders sets the standard metadata headers emitted for an object.
func writeObjectHeaders(w http.ResponseWriter, attrs *objval.ObjectAttrs) {
	w.Header().Set("Content-Type", attrs.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(attrs.Size, 10))
	w.Header().Set("ETag", quoteETag(attrs.ETag))
	w.Header().Set("Last-Modified", attrs.LastModified.UTC().Format(http.TimeFormat))
}

// writeXML renders the given document with the standard XML preamble; write failures are logged, by this point the
// status is on the wire.
func (h *Handler) writeXML(w http.ResponseWriter, status int, document any) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)

	_, err := w.Write([]byte(xml.Header))
	if err != nil {
		h.logger.Debug("failed to write response", "error", err)
		return
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")

	err = encoder.Encode(document)
	if err != nil {
		h.logger.Debug("failed to write response", "error", err)
	}
}

// writeError renders the given error into the S3 XML error envelope.
func (h *Handler) writeError(w http.ResponseWriter, id string, err error) {
	wireErr := objerr.From(err)

	// Internal failures are logged with their detail, the envelope deliberately carries none
	if wireErr.Status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}

	h.writeXML(w, wireErr.Status, errorResponse{Code: wireErr.Code, Message: wireErr.Message, RequestID: id})
}
