package core

import (
	"fmt"
	"net"
	"net/http"
	"net/mail"
	"strings"
)

// MimeTypeJSON is the only request body type the API accepts.
const MimeTypeJSON = "application/json"

// ValidateEmail checks if an email address is valid according to RFC 5322.
func ValidateEmail(email string) error {
	_, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// GetClientIP extracts the client IP address from the request, handling
// proxies via the configured header.
func (a *App) GetClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	cfg := a.Config()
	if cfg.Server.ClientIpProxyHeader != "" {
		if forwarded := r.Header.Get(cfg.Server.ClientIpProxyHeader); forwarded != "" {
			// Use the first IP when the header contains a list.
			parts := strings.Split(forwarded, ",")
			ip = strings.TrimSpace(parts[0])
		}
	}
	return ip
}
