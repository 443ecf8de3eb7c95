package utils

import (
	"net/netip"
	"net/url"
	"strings"
)

// IsAllowedOrigin checks whether an Origin header value should be trusted.
// Localhost, RFC1918/link-local addresses, .local mDNS names, and single-label
// LAN hostnames are allowed; public internet origins are not.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "localhost" || strings.HasSuffix(hostname, ".local") {
		return true
	}
	if !strings.Contains(hostname, ".") && !strings.Contains(hostname, ":") {
		return true
	}

	addr, err := netip.ParseAddr(hostname)
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast()
}
