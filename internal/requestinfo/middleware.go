// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *Info.
//
/*
Context
--------
This handler sits first in the chain.  For every request it:

  1. Derives the client IP (Cf-Connecting-Ip → X-Forwarded-For first
     entry → Client-Ip → RemoteAddr).
  2. Parses the User-Agent header.
  3. Performs an optional GeoLite2 lookup.
  4. Stores an `*Info` value in the request context under an unexported
     key, so handlers can read UA and IP attributes without reparsing.

Instrumentation
---------------
At debug level, each invocation logs a span containing the client IP,
country, browser family, device class, bot flag, and request path.

Notes
-----
  • All look-ups are read-only, so the middleware is safe under heavy
    concurrency.
*/
package requestinfo

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Enrich wraps an http.Handler, attaches *Info, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)

		info := &Info{
			IP:        ip,
			UA:        parseUA(r.UserAgent()),
			Geo:       lookupGeo(ip),
			Timestamp: time.Now().UTC(),
		}

		zap.S().Debugw("request info",
			"ip", info.IP,
			"country", info.Geo.CountryISO,
			"browser", info.UA.Browser,
			"device", info.UA.Device,
			"bot", info.UA.IsBot,
			"path", r.URL.Path,
		)

		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
