//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (client address, user-agent fingerprint, geolocation, and
//  timestamp).  These structs are inert: no database handles, no large
//  buffers, safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer        (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// maxUserAgentLen caps the stored raw header, matching the submission
// store's column contract.
const maxUserAgentLen = 500

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties kept for logging.
type UA struct {
	Raw     string // Entire User-Agent header, truncated to 500 chars
	Browser string // "Chrome", "Firefox", "Safari", ...
	OS      string // "macOS", "Windows", "Android", ...
	Device  string // "Desktop", "Phone", "Tablet", ...
	IsBot   bool   // True when the UA matches a crawler signature
}

// Geo holds best-effort IP geolocation hints; empty when the GeoLite2
// database is absent or has no match.
type Geo struct {
	CountryISO string
	City       string
}

// Info is attached to the request context by the Enrich middleware.
type Info struct {
	IP        string // derived once per request, may be empty
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is an optional singleton MaxMind handle.  Concurrent reads
// are safe, which is all we ever perform.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2 database.  Call once from main(); a missing
// or unreadable database only disables enrichment.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

type ctxKey struct{}

// FromContext returns the *Info stored by Enrich, or nil when the
// middleware has not run.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

//
//  -----------------------------
//  Client IP derivation
//  -----------------------------
//

// ipHeaders are consulted in order; the first non-empty one wins.  The
// ordering matches the proxy chain in front of the service: Cloudflare,
// then generic forwarders, then legacy Client-Ip, then the socket peer.
var ipHeaders = [...]string{"Cf-Connecting-Ip", "X-Forwarded-For", "Client-Ip"}

// ClientIP derives the caller address.  For X-Forwarded-For only the
// left-most entry is used, trimmed of surrounding whitespace.  Returns
// "" when nothing usable is present.
func ClientIP(r *http.Request) string {
	for _, h := range ipHeaders {
		val := r.Header.Get(h)
		if val == "" {
			continue
		}
		if h == "X-Forwarded-For" {
			first, _, _ := strings.Cut(val, ",")
			return strings.TrimSpace(first)
		}
		return val
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// UserAgent returns the caller's raw User-Agent header truncated to 500
// characters; empty string when absent.
func UserAgent(r *http.Request) string {
	ua := r.UserAgent()
	if len(ua) > maxUserAgentLen {
		ua = ua[:maxUserAgentLen]
	}
	return ua
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(raw string) UA {
	u := uasurfer.Parse(raw)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	if len(raw) > maxUserAgentLen {
		raw = raw[:maxUserAgentLen]
	}
	return UA{
		Raw:     raw,
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		OS:      osName,
		Device:  deviceTypeToString(u.DeviceType),
		IsBot:   u.IsBot(),
	}
}

// deviceTypeToString maps uasurfer.DeviceType to a friendly string.
func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// lookupGeo returns best-effort Geo data using the optional reader.
func lookupGeo(ipStr string) Geo {
	if geoReader == nil {
		return Geo{}
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Geo{}
	}
	rec, err := geoReader.City(ip)
	if err != nil {
		return Geo{}
	}
	return Geo{
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
