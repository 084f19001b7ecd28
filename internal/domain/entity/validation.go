package entity

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const maxURLLength = 2048

// suspiciousHostSuffixes are reserved or known-fake domains that never host
// real news. Entries without a leading dot match anywhere in the host.
var suspiciousHostSuffixes = []string{".test", ".example", ".invalid", ".localhost", "florp-net"}

// ValidateURL accepts absolute http(s) URLs on a public, non-reserved host.
// Hosts that resolve to loopback, link-local or RFC1918 addresses are
// rejected; a failed lookup is not an error.
func ValidateURL(rawURL string) error {
	switch {
	case rawURL == "":
		return invalid("url", "URL is required")
	case len(rawURL) > maxURLLength:
		return invalid("url", "url must not exceed %d characters", maxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("url", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return invalid("url", "URL must have a valid host")
	}

	host := strings.ToLower(u.Hostname())
	if IsSuspiciousHost(host) {
		return invalid("url", "URL points to a test or reserved domain")
	}

	ips, _ := net.LookupIP(host)
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return invalid("url", "url cannot point to private network")
		}
	}
	return nil
}

// IsSuspiciousHost reports whether host belongs to a reserved or known-fake domain.
func IsSuspiciousHost(host string) bool {
	host = strings.ToLower(host)
	for _, suffix := range suspiciousHostSuffixes {
		if strings.HasPrefix(suffix, ".") {
			if strings.HasSuffix(host, suffix) {
				return true
			}
			continue
		}
		if strings.Contains(host, suffix) {
			return true
		}
	}
	return false
}

// isPrivateIP covers loopback, unspecified, link-local (cloud metadata
// lives at 169.254.169.254) and RFC1918/ULA ranges.
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() || ip.IsPrivate()
}
