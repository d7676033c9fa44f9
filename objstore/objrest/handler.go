// Package objrest exposes a tenant object store over the S3 REST wire protocol. A handler glues together the three
// concerns of the data plane: request authentication, dispatch to the storage engine, and activity reporting for
// connected WebSocket subscribers.
package objrest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/couchbaselabs/s3lite/activity"
	"github.com/couchbaselabs/s3lite/auth"
	"github.com/couchbaselabs/s3lite/objstore/objerr"
	"github.com/couchbaselabs/s3lite/objstore/objlite"
)

// Handler serves the S3 compatible REST interface for a single tenant store.
type Handler struct {
	store       *objlite.Store
	verifier    *auth.Verifier
	broadcaster *activity.Broadcaster
	logger      *slog.Logger
}

// HandlerOptions encapsulates the options available when creating a new handler.
type HandlerOptions struct {
	// Store is the tenant store requests operate against.
	Store *objlite.Store

	// Verifier authenticates requests, and authorizes access to the addressed bucket.
	Verifier *auth.Verifier

	// Broadcaster receives an event for each completed request, and adopts incoming WebSocket upgrades.
	Broadcaster *activity.Broadcaster

	// Logger is the passed logger, defaults to the default implementation of slog.
	Logger *slog.Logger
}

// defaults fills any missing attributes with sane defaults.
func (h *HandlerOptions) defaults() {
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
}

// NewHandler creates a new handler using the given options.
func NewHandler(options HandlerOptions) *Handler {
	// Fill out any missing fields with the sane defaults
	options.defaults()

	return &Handler{
		store:       options.Store,
		verifier:    options.Verifier,
		broadcaster: options.Broadcaster,
		logger:      options.Logger,
	}
}

// ServeHTTP implements 'http.Handler' by serving the S3 interface on all paths, with WebSocket upgrades on any path
// handed over to the activity broadcaster.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Upgrades hijack the connection and never complete as an S3 operation, so they don't produce an event
	if websocket.IsWebSocketUpgrade(r) {
		h.broadcaster.ServeHTTP(w, r)
		return
	}

	var (
		start    = time.Now()
		recorder = &statusRecorder{ResponseWriter: w}
	)

	h.handle(recorder, r)

	h.broadcaster.Broadcast(activity.NewEvent(r.Method, r.URL.RequestURI(), recorder.Status(), time.Since(start)))
}

// handle runs a request through address parsing, authentication then dispatch, converting any error into the S3 XML
// error envelope.
func (h *Handler) handle(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()

	w.Header().Set(headerRequestID, id)

	addr, err := parseAddress(r.URL.EscapedPath())
	if err != nil {
		h.writeError(w, id, err)
		return
	}

	err = h.verifier.Verify(r.Header.Get("Authorization"), addr.bucket)
	if err != nil {
		h.writeError(w, id, err)
		return
	}

	err = h.dispatch(w, r, addr)
	if err != nil {
		h.writeError(w, id, err)
	}
}

// dispatch routes the request to the operation identified by its method, path shape and query parameters.
//
// NOTE: Requests that match no operation surface as 'NotImplemented' rather than not found; an unmatched route is a
// gap in the interface, not a missing resource.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, addr address) error {
	var (
		ctx      = r.Context()
		query    = r.URL.Query()
		isBucket = addr.key == ""
	)

	switch {
	case isBucket && r.Method == http.MethodHead:
		return h.headBucket(w)
	case isBucket && r.Method == http.MethodGet && query.Has("uploads"):
		return h.listUploads(ctx, w, addr, query)
	case isBucket && r.Method == http.MethodGet:
		return h.listObjects(ctx, w, addr, query)
	case isBucket && r.Method == http.MethodPost && query.Has("delete"):
		return h.deleteObjects(ctx, w, r, addr)
	case isBucket:
		return &objerr.UnimplementedOperationError{Name: r.Method + " " + r.URL.Path}
	case r.Method == http.MethodGet && query.Has("uploadId"):
		return h.listParts(ctx, w, addr, query)
	case r.Method == http.MethodGet, r.Method == http.MethodHead:
		return h.getObject(ctx, w, r, addr)
	case r.Method == http.MethodPost && query.Has("uploads"):
		return h.createMultipartUpload(ctx, w, r, addr)
	case r.Method == http.MethodPut && query.Has("uploadId") && query.Has("partNumber"):
		return h.uploadPart(ctx, w, r, addr, query)
	case r.Method == http.MethodPost && query.Has("uploadId"):
		return h.completeMultipartUpload(ctx, w, addr, query)
	case r.Method == http.MethodDelete && query.Has("uploadId"):
		return h.abortMultipartUpload(ctx, w, addr, query)
	case r.Method == http.MethodPut && r.Header.Get(headerCopySource) != "":
		return h.copyObject(ctx, w, r, addr)
	case r.Method == http.MethodPut:
		return h.putObject(ctx, w, r, addr)
	case r.Method == http.MethodDelete:
		return h.deleteObject(ctx, w, addr)
	}

	return &objerr.UnimplementedOperationError{Name: r.Method + " " + r.URL.Path}
}
