package server

import (
	"bytes"
	"net/http"
)

// responseWriterWrapper records the status code and a copy of the body so the
// audit and metrics middleware can see what a handler produced.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func newResponseWriterWrapper(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriterWrapper) StatusCode() int {
	return w.statusCode
}

func (w *responseWriterWrapper) Body() []byte {
	return w.body.Bytes()
}
