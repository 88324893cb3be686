// Package identity generates and validates device identifiers.
//
// Every mint site (terminal agent and the server-side fallback in the
// device-auth middleware) uses the same versioned algorithm, so an identifier
// produced anywhere has the same format and the same collision behavior.
package identity

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Prefix is the leading token of every device identifier.
const Prefix = "TAB"

// Version identifies the generation algorithm. Bump when the signal set or
// the format changes so stored identifiers can be told apart.
const Version = 2

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Signals are the client-observable inputs that seed an identifier. None of
// them is secret; stability across reloads comes from caching the generated
// value, not from the signals themselves.
type Signals struct {
	UserAgent   string
	Language    string
	Platform    string
	ScreenW     int
	ScreenH     int
	TZOffsetMin int
}

// Generate produces a device identifier of the form TAB-XXXX-XXXX-XXXXXX:
// a truncated base-36 rendering of a 32-bit rolling hash over the signal
// string, the last four characters of the base-36 millisecond timestamp, and
// a six-character random suffix. The result is uppercase and
// human-transcribable.
func Generate(s Signals) string {
	info := strings.Join([]string{
		s.UserAgent,
		s.Language,
		s.Platform,
		strconv.Itoa(s.ScreenW),
		strconv.Itoa(s.ScreenH),
		strconv.Itoa(s.TZOffsetMin),
	}, "|")

	var hash int32
	for _, ch := range []byte(info) {
		hash = hash*31 + int32(ch)
	}
	if hash < 0 {
		hash = -hash
	}

	hashPart := strconv.FormatInt(int64(hash), 36)
	if len(hashPart) > 4 {
		hashPart = hashPart[:4]
	}
	for len(hashPart) < 4 {
		hashPart += "0"
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	tsPart := ts[len(ts)-4:]

	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = base36[rand.Intn(len(base36))]
	}

	return strings.ToUpper(Prefix + "-" + hashPart + "-" + tsPart + "-" + string(suffix))
}

// FromRequest builds fallback signals from request headers. Used when a
// request arrives carrying no identifier at all; the marker platform keeps
// server-minted IDs distinguishable in the signal string without changing
// the output format.
func FromRequest(r *http.Request) Signals {
	return Signals{
		UserAgent: r.UserAgent(),
		Language:  r.Header.Get("Accept-Language"),
		Platform:  "server-fallback|" + r.Header.Get("Accept-Encoding"),
	}
}

// IsDeviceID reports whether s looks like a generated identifier. Used to
// distinguish string identifiers from numeric surrogate keys and to decide
// whether a cached value may be reused verbatim.
func IsDeviceID(s string) bool {
	if !strings.HasPrefix(s, Prefix+"-") {
		return false
	}
	rest := s[len(Prefix)+1:]
	if rest == "" {
		return false
	}
	for _, ch := range rest {
		switch {
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '-':
		default:
			return false
		}
	}
	return true
}

// OperatorTag derives a short default display name from an identifier
// suffix, e.g. "Operador-XZ1Q9F".
func OperatorTag(deviceID string) string {
	parts := strings.Split(deviceID, "-")
	tail := parts[len(parts)-1]
	if tail == "" {
		tail = deviceID
	}
	return "Operador-" + tail
}
