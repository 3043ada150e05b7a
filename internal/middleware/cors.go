package middleware

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// wildcardOrigin matches origins like https://*.example.com, where the
// wildcard stands for exactly one subdomain label.
type wildcardOrigin struct {
	scheme string
	suffix string // includes the leading dot
}

// parseWildcardOrigin parses a single-wildcard origin pattern. Returns
// nil for exact origins and for patterns too broad to allow safely.
func parseWildcardOrigin(pattern string) *wildcardOrigin {
	var scheme string
	switch {
	case strings.HasPrefix(pattern, "https://"):
		scheme = "https://"
	case strings.HasPrefix(pattern, "http://"):
		scheme = "http://"
	default:
		return nil
	}

	rest := strings.TrimPrefix(pattern, scheme)
	if !strings.HasPrefix(rest, "*.") {
		return nil
	}

	domain := rest[2:]
	if domain == "" || strings.Contains(domain, "*") {
		return nil
	}
	// Wildcarding directly over a TLD would allow any site
	if !strings.Contains(domain, ".") {
		return nil
	}

	return &wildcardOrigin{scheme: scheme, suffix: rest[1:]}
}

// matches reports whether origin is scheme + exactly one label + suffix.
func (w *wildcardOrigin) matches(origin string) bool {
	if !strings.HasPrefix(origin, w.scheme) {
		return false
	}
	host := strings.TrimPrefix(origin, w.scheme)
	if !strings.HasSuffix(host, w.suffix) {
		return false
	}
	label := strings.TrimSuffix(host, w.suffix)
	if label == "" || strings.Contains(label, ".") || strings.Contains(label, "/") {
		return false
	}
	return true
}

// CORS middleware to handle cross-origin requests
// Reads MACROLOG_CORS_ALLOWED_ORIGINS to restrict origins; entries may be
// exact origins or single-wildcard patterns like https://*.example.com.
// If not set, defaults to "*" (allow all origins)
func CORS() gin.HandlerFunc {
	allowedOriginsStr := os.Getenv("MACROLOG_CORS_ALLOWED_ORIGINS")
	allowAll := allowedOriginsStr == ""

	var exact []string
	var wildcards []*wildcardOrigin
	if !allowAll {
		for _, origin := range strings.Split(allowedOriginsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin == "" {
				continue
			}
			if w := parseWildcardOrigin(origin); w != nil {
				wildcards = append(wildcards, w)
			} else {
				exact = append(exact, origin)
			}
		}
	}

	originAllowed := func(origin string) bool {
		for _, allowed := range exact {
			if origin == allowed {
				return true
			}
		}
		for _, w := range wildcards {
			if w.matches(origin) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if originAllowed(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		} else if c.Request.Method == "OPTIONS" {
			// Origin not allowed; reject the preflight outright
			c.AbortWithStatus(403)
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Idempotency-Key, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
