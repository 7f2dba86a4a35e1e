package config

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	OAuth2ProviderGoogle = "google"
	OAuth2ProviderGitHub = "github"
)

// Duration wraps time.Duration so values can be written as strings
// ("45m", "24h") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LogLevel wraps slog.Level for TOML ("debug", "info", "warn", "error").
type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	return l.Level.UnmarshalText(text)
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return l.Level.MarshalText()
}

type Server struct {
	Addr                    string   `toml:"addr"`
	BaseURL                 string   `toml:"base_url"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
	ClientIpProxyHeader     string   `toml:"client_ip_proxy_header"`
}

// Session covers the cookie session tokens and the password reset
// token lifetimes.
type Session struct {
	CookieName            string   `toml:"cookie_name"`
	Secret                string   `toml:"secret"`
	TokenDuration         Duration `toml:"token_duration"`
	RememberTokenDuration Duration `toml:"remember_token_duration"`
	ResetTokenDuration    Duration `toml:"reset_token_duration"`
	CookieDomain          string   `toml:"cookie_domain"`
	CookieSecure          bool     `toml:"cookie_secure"`
}

type Scheduler struct {
	Interval              Duration `toml:"interval"`
	MaxJobsPerTick        int      `toml:"max_jobs_per_tick"`
	ConcurrencyMultiplier int      `toml:"concurrency_multiplier"`
}

type RateLimits struct {
	PasswordResetCooldown Duration `toml:"password_reset_cooldown"`
	ContactCooldown       Duration `toml:"contact_cooldown"`
}

type OAuth2Provider struct {
	Name            string   `toml:"name"`
	DisplayName     string   `toml:"display_name"`
	ClientID        string   `toml:"client_id"`
	ClientSecret    string   `toml:"client_secret"`
	RedirectURL     string   `toml:"redirect_url"`
	RedirectURLPath string   `toml:"redirect_url_path"`
	AuthURL         string   `toml:"auth_url"`
	TokenURL        string   `toml:"token_url"`
	UserInfoURL     string   `toml:"user_info_url"`
	Scopes          []string `toml:"scopes"`
	PKCE            bool     `toml:"pkce"`
}

// SessionExchange configures the delegated login provider: the client
// completes login on the provider's hosted page and posts the resulting
// session id back to us, which we verify against VerifyURL.
type SessionExchange struct {
	Enabled     bool     `toml:"enabled"`
	Name        string   `toml:"name"`
	DisplayName string   `toml:"display_name"`
	LoginURL    string   `toml:"login_url"`
	VerifyURL   string   `toml:"verify_url"`
	Timeout     Duration `toml:"timeout"`
	// MarkerTTL bounds how long an already exchanged session id is
	// remembered for idempotent replays.
	MarkerTTL Duration `toml:"marker_ttl"`
}

type Smtp struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	FromName    string `toml:"from_name"`
	FromAddress string `toml:"from_address"`
	LocalName   string `toml:"local_name"`
	AuthMethod  string `toml:"auth_method"`
	UseTLS      bool   `toml:"use_tls"`
	UseStartTLS bool   `toml:"use_start_tls"`
}

type Discord struct {
	Activated    bool     `toml:"activated"`
	WebhookURL   string   `toml:"webhook_url"`
	APIRateLimit Duration `toml:"api_rate_limit"`
	APIBurst     int      `toml:"api_burst"`
	SendTimeout  Duration `toml:"send_timeout"`
}

type Notifier struct {
	Discord Discord `toml:"discord"`
}

type BackupLocal struct {
	Enabled   bool     `toml:"enabled"`
	BackupDir string   `toml:"backup_dir"`
	Interval  Duration `toml:"interval"`
	Keep      int      `toml:"keep"`
}

type BlockIp struct {
	Enabled   bool `toml:"enabled"`
	Activated bool `toml:"activated"`
}

type Log struct {
	Level LogLevel `toml:"level"`
}

type Config struct {
	DBFile string `toml:"db_file"`

	Server          Server                    `toml:"server"`
	Session         Session                   `toml:"session"`
	Scheduler       Scheduler                 `toml:"scheduler"`
	RateLimits      RateLimits                `toml:"rate_limits"`
	OAuth2Providers map[string]OAuth2Provider `toml:"oauth2_providers"`
	SessionExchange SessionExchange           `toml:"session_exchange"`
	Smtp            Smtp                      `toml:"smtp"`
	Notifier        Notifier                  `toml:"notifier"`
	BackupLocal     BackupLocal               `toml:"backup_local"`
	BlockIp         BlockIp                   `toml:"block_ip"`
	Log             Log                       `toml:"log"`

	// Source records where the config was loaded from. Empty for the
	// generated defaults.
	Source string `toml:"-"`
}
