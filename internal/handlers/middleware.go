package handlers

import (
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// WithRecover wraps an http.Handler and recovers from panics, serving
// onPanic instead of crashing the server.
func WithRecover(next http.Handler, onPanic http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("ERROR: [Recover] %v (%s %s)", rec, r.Method, r.URL.Path)
				onPanic(w, r)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// Logger writes one line per request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		log.Printf("INFO: [HTTP] %s %s %d %dB %s %s", r.Method, r.URL.RequestURI(), rec.status, rec.bytes,
			time.Since(start).Round(time.Microsecond), clientIP(r))
	})
}

// CanonicalHost permanently redirects requests for any other host to host,
// keeping path and query. It is off when host is empty or in debug mode,
// and /health/ is always served.
func CanonicalHost(next http.Handler, host string, debug bool) http.Handler {
	if host == "" || debug {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health/" {
			next.ServeHTTP(w, r)
			return
		}
		reqHost := r.Host
		if h, _, err := net.SplitHostPort(reqHost); err == nil {
			reqHost = h
		}
		if !strings.EqualFold(reqHost, host) {
			http.Redirect(w, r, scheme(r)+"://"+host+r.URL.RequestURI(), http.StatusMovedPermanently)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var compressibleTypes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/javascript",
	"image/svg+xml",
}

func compressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

type compressWriter struct {
	http.ResponseWriter
	r       *http.Request
	wc      io.WriteCloser
	decided bool
}

func (c *compressWriter) decide(status int) {
	c.decided = true
	h := c.Header()
	if c.r.Method == http.MethodHead || status < 200 || status == http.StatusNoContent ||
		status == http.StatusNotModified || h.Get("Content-Encoding") != "" || !compressible(h.Get("Content-Type")) {
		return
	}
	h.Del("Content-Length")
	c.wc = brotli.HTTPCompressor(c.ResponseWriter, c.r)
}

func (c *compressWriter) WriteHeader(status int) {
	if !c.decided {
		c.decide(status)
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *compressWriter) Write(b []byte) (int, error) {
	if !c.decided {
		if c.Header().Get("Content-Type") == "" {
			c.Header().Set("Content-Type", http.DetectContentType(b))
		}
		c.WriteHeader(http.StatusOK)
	}
	if c.wc != nil {
		return c.wc.Write(b)
	}
	return c.ResponseWriter.Write(b)
}

func (c *compressWriter) Unwrap() http.ResponseWriter { return c.ResponseWriter }

// Compress encodes text-like responses with brotli or gzip, whichever the
// client prefers.
func Compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cw := &compressWriter{ResponseWriter: w, r: r}
		defer func() {
			if cw.wc != nil {
				cw.wc.Close()
			}
		}()
		next.ServeHTTP(cw, r)
	})
}
