package utils

import "strings"

// ParseScope splits a space-delimited scope string into a slice, dropping
// empty entries.
func ParseScope(scope string) []string {
	if scope == "" {
		return nil
	}
	parts := strings.Fields(scope)
	if len(parts) == 0 {
		return nil
	}
	return parts
}

// JoinScope joins a scope slice back into the wire representation.
func JoinScope(scopes []string) string {
	return strings.Join(scopes, " ")
}

// ScopeContains reports whether a space-delimited scope string contains the
// given scope value.
func ScopeContains(scope, want string) bool {
	for _, s := range ParseScope(scope) {
		if s == want {
			return true
		}
	}
	return false
}

// ScopeSubset reports whether every scope in requested is present in allowed.
// An empty requested set is a subset of anything.
func ScopeSubset(requested, allowed []string) bool {
	if len(requested) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}
