package middleware

import (
	"net/http"
)

type responseData struct {
	status int
	size   int
}

// Response writer that remembers status and size of the response
type recordingWriter struct {
	http.ResponseWriter
	data responseData
}

func newRecordingWriter(w http.ResponseWriter) *recordingWriter {
	return &recordingWriter{
		ResponseWriter: w,
		data:           responseData{status: http.StatusOK, size: 0},
	}
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	size, err := w.ResponseWriter.Write(p)
	w.data.size += size
	return size, err
}

func (w *recordingWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.data.status = statusCode
}

func (w *recordingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
