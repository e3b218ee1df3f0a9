// Package shield provides the HTTP middleware for the card server. The
// server binds to loopback and is only ever talked to by the capture page,
// so the stack is small: reject non-loopback peers, set baseline security
// headers, bound message bodies, and tag requests with an ID.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.Stack(64 << 20) {
//	    r.Use(mw)
//	}
package shield

import (
	"net"
	"net/http"

	"github.com/hazyhaar/codesnap/idgen"
	"github.com/hazyhaar/codesnap/kit"
)

// Stack returns the middleware for the card server, ordered:
// LoopbackOnly → SecurityHeaders → MaxJSONBody → RequestID.
func Stack(maxBody int64) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		LoopbackOnly,
		SecurityHeaders,
		MaxJSONBody(maxBody),
		RequestID,
	}
}

// LoopbackOnly rejects requests from non-loopback peers. The card server
// must never be reachable from the network even if a firewall misroutes.
func LoopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders sets baseline response headers. The document's own CSP
// travels in a meta tag because its nonce is minted per capture, after
// this middleware is built.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// MaxJSONBody bounds the body of JSON requests. Other content types pass
// through untouched.
func MaxJSONBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") == "application/json" {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID tags each request with a generated ID, exposed both in the
// context and as an X-Request-ID response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := idgen.New()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(kit.WithRequestID(r.Context(), id)))
	})
}
