package api

import "strings"

const LocalBaseURL = "http://localhost:8080"

// ResolveBaseURL maps the host the storefront is served from to its API:
// shop.example.com -> https://api.example.com. Anything that is not a .com
// domain talks to the local backend.
func ResolveBaseURL(scheme, hostname string) string {
	root, ok := rootComDomain(hostname)
	if !ok {
		return LocalBaseURL
	}
	if scheme == "" {
		scheme = "https"
	}
	scheme = strings.TrimSuffix(scheme, ":")
	return scheme + "://api." + root
}

func rootComDomain(hostname string) (string, bool) {
	parts := strings.Split(strings.ToLower(hostname), ".")
	if len(parts) < 2 {
		return "", false
	}
	root := strings.Join(parts[len(parts)-2:], ".")
	if !strings.HasSuffix(root, ".com") {
		return "", false
	}
	return root, true
}
