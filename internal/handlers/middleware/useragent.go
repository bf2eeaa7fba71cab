package middleware

import (
	"net/http"
	"regexp"
)

// Scripted clients and crawlers get a flat 403 on every route
var bannedUserAgents = []*regexp.Regexp{
	regexp.MustCompile(`Python-urllib`),
	regexp.MustCompile(`python-requests`),
	regexp.MustCompile(`(?i)bot`),
	regexp.MustCompile(`(?i)spider`),
}

func UserAgentBan() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent := r.Header.Get("User-Agent")
			for _, pattern := range bannedUserAgents {
				if pattern.MatchString(userAgent) {
					http.Error(w, "You are banned", http.StatusForbidden)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
