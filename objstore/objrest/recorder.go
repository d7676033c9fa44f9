package objrest

import "net/http"

// statusRecorder captures the status a handler answered with, so the request can be reported to the activity stream
// after the fact.
type statusRecorder struct {
	http.ResponseWriter

	wrote  bool
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	if !s.wrote {
		s.wrote, s.status = true, status
	}

	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(body []byte) (int, error) {
	// An implicit 200, the handler began the body without setting a status
	if !s.wrote {
		s.wrote, s.status = true, http.StatusOK
	}

	return s.ResponseWriter.Write(body)
}

// Status returns the status the response was answered with, or 200 where the handler never wrote one.
func (s *statusRecorder) Status() int {
	if !s.wrote {
		return http.StatusOK
	}

	return s.status
}
