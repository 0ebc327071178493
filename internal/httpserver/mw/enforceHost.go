package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/utils"
)

// EnforceHost allows requests only if r.Host matches one of the allowed hosts.
// Supports wildcard patterns like "*.example.com" and "*" for any host.
// A render pass replaces allowedHosts with the hosts of its scope.
// If the resulting list is empty, it acts as a passthrough.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	log.Debugf("EnforceHost: initialized with hosts=%v", allowedHosts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed := allowedHosts
			if scope, ok := dispatch.ScopeFrom(r.Context()); ok {
				allowed = scope.AllowedHosts
			}
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			host := utils.ParseHostNoPort(r.Host)
			for _, pattern := range allowed {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Debugf("EnforceHost: Host %s REJECTED", r.Host)
			http.Error(w, "Invalid HTTP_HOST header: "+r.Host, http.StatusBadRequest)
		})
	}
}

// matchHost checks if host matches pattern (supports wildcard *.example.com)
func matchHost(host, pattern string) bool {
	if pattern == "*" {
		return true
	}

	// Exact match
	if strings.EqualFold(host, utils.ParseHostNoPort(pattern)) {
		return true
	}

	// Wildcard match: *.example.com matches sub.example.com
	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:] // Remove * to get .example.com
		return strings.HasSuffix(strings.ToLower(host), strings.ToLower(suffix))
	}

	return false
}
