package core

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bodySize   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(data)
	rw.bodySize += n
	return n, err
}

// Flush keeps streamed MCP responses working through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// loggingHandler writes one line per request and one per response to out,
// tied together by a request ID that is also returned in X-Request-ID.
func loggingHandler(handler http.Handler, out io.Writer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()

		w.Header().Set("X-Request-ID", requestID)
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		fmt.Fprintf(out, "[INFO] %s | RequestID: %s | Incoming Request: %s %s | From: %s | User-Agent: %s\n",
			start.Format(time.RFC3339),
			requestID,
			r.Method,
			r.URL.Path,
			r.RemoteAddr,
			r.Header.Get("User-Agent"),
		)

		handler.ServeHTTP(wrapped, r)

		fmt.Fprintf(out, "[INFO] %s | RequestID: %s | Response Sent: %s %s | Status: %d | Duration: %v | Response Size: %d bytes\n",
			time.Now().Format(time.RFC3339),
			requestID,
			r.Method,
			r.URL.Path,
			wrapped.statusCode,
			time.Since(start),
			wrapped.bodySize,
		)
	})
}
