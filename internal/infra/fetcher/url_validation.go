package fetcher

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"truthlens/internal/domain/entity"
)

// validateURL checks scheme, host and reserved domains. With denyPrivateIPs
// it also resolves the host and rejects private addresses.
func validateURL(rawURL string, denyPrivateIPs bool) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}
	if entity.IsSuspiciousHost(host) {
		return fmt.Errorf("%w: %s", ErrSuspiciousDomain, host)
	}

	if !denyPrivateIPs {
		return nil
	}

	if err := entity.ValidateURL(rawURL); err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrPrivateIP, verr.Message)
		}
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	// entity.ValidateURL tolerates DNS failures; a page we cannot resolve
	// cannot be fetched either.
	if ip := net.ParseIP(host); ip == nil {
		if _, err := net.LookupIP(host); err != nil {
			return fmt.Errorf("%w: DNS lookup failed for %s: %v", ErrInvalidURL, host, err)
		}
	}
	return nil
}
