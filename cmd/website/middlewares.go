package main

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

/*
newAdminAuditMiddleware logs every request into the back office. The admin
area sits behind the reverse proxy's access controls, so this is an audit
trail rather than an authentication gate.
*/
func newAdminAuditMiddleware(excludedPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			for _, excludedPath := range excludedPaths {
				if strings.HasPrefix(path, excludedPath) {
					next.ServeHTTP(w, r)
					return
				}
			}

			start := time.Now()
			next.ServeHTTP(w, r)

			slog.Info("admin request",
				slog.String("method", r.Method),
				slog.String("path", path),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
