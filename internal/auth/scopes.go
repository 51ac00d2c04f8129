package auth

import "net/http"

// Scopes granted to activity API callers.
const (
	ScopeActivitiesWrite = "activities:write"
	ScopeActivitiesRead  = "activities:read"
)

// requiredScopes lists the scopes that each satisfy a request. Reads accept
// either scope; every other method needs write access.
func requiredScopes(method string) []string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return []string{ScopeActivitiesRead, ScopeActivitiesWrite}
	default:
		return []string{ScopeActivitiesWrite}
	}
}
