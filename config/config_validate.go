package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/folio-sh/folio/crypto"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateSession(&cfg.Session); err != nil {
		return fmt.Errorf("session config validation failed: %w", err)
	}
	if err := validateSessionExchange(&cfg.SessionExchange); err != nil {
		return fmt.Errorf("session exchange config validation failed: %w", err)
	}
	if err := validateSmtp(&cfg.Smtp); err != nil {
		return fmt.Errorf("smtp config validation failed: %w", err)
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or :port format.
// If only a port is provided (e.g., ":8080"), it defaults the host to "localhost".
//
// Allowed formats:
//   - "host:port" (e.g., "example.com:8080", "127.0.0.1:8080", "[::1]:8080")
//   - ":port"     (e.g., ":8080" becomes "localhost:8080")
//
// The port part is mandatory.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		// Check if it's just a port (e.g., ":8080")
		if strings.HasPrefix(server.Addr, ":") {
			port = strings.TrimPrefix(server.Addr, ":")
			host = "localhost" // Default host
		} else {
			return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
		}
	}

	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}

	// Reconstruct the address with the defaulted host if necessary
	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	return nil
}

func validateSession(session *Session) error {
	if session.CookieName == "" {
		return fmt.Errorf("session cookie name cannot be empty")
	}
	if len(session.Secret) < crypto.MinKeyLength {
		return fmt.Errorf("session secret must be at least %d characters", crypto.MinKeyLength)
	}
	if session.TokenDuration.Duration <= 0 {
		return fmt.Errorf("session token duration must be positive")
	}
	if session.RememberTokenDuration.Duration < session.TokenDuration.Duration {
		return fmt.Errorf("remember token duration cannot be shorter than the token duration")
	}
	if session.ResetTokenDuration.Duration <= 0 {
		return fmt.Errorf("reset token duration must be positive")
	}
	return nil
}

func validateSessionExchange(se *SessionExchange) error {
	if !se.Enabled {
		return nil
	}
	if se.VerifyURL == "" {
		return fmt.Errorf("verify URL cannot be empty when session exchange is enabled")
	}
	if se.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive when session exchange is enabled")
	}
	return nil
}

func validateSmtp(smtp *Smtp) error {
	if !smtp.Enabled {
		return nil
	}
	if smtp.Host == "" {
		return fmt.Errorf("smtp host cannot be empty when smtp is enabled")
	}
	if smtp.Port <= 0 || smtp.Port > 65535 {
		return fmt.Errorf("invalid smtp port %d", smtp.Port)
	}
	if smtp.FromAddress == "" {
		return fmt.Errorf("smtp from address cannot be empty when smtp is enabled")
	}
	return nil
}
