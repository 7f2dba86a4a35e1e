package config

import (
	"log/slog"
	"time"

	"github.com/folio-sh/folio/crypto"
)

// NewDefaultConfig creates a new Config with sensible defaults.
// All secret values are randomly generated.
func NewDefaultConfig() *Config {
	return &Config{
		DBFile: "folio.db",
		Server: Server{
			Addr:                    ":8080",
			BaseURL:                 "http://localhost:8080",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 3 * time.Second},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
			ClientIpProxyHeader:     "",
		},
		Session: Session{
			CookieName:            "session_token",
			Secret:                crypto.RandomString(32, crypto.AlphanumericAlphabet),
			TokenDuration:         Duration{Duration: 7 * 24 * time.Hour},
			RememberTokenDuration: Duration{Duration: 30 * 24 * time.Hour},
			ResetTokenDuration:    Duration{Duration: 1 * time.Hour},
			CookieDomain:          "",
			CookieSecure:          true,
		},
		Scheduler: Scheduler{
			Interval:              Duration{Duration: 60 * time.Second},
			MaxJobsPerTick:        10,
			ConcurrencyMultiplier: 2,
		},
		RateLimits: RateLimits{
			PasswordResetCooldown: Duration{Duration: 15 * time.Minute},
			ContactCooldown:       Duration{Duration: 1 * time.Minute},
		},
		OAuth2Providers: map[string]OAuth2Provider{
			OAuth2ProviderGoogle: {
				Name:            OAuth2ProviderGoogle,
				DisplayName:     "Google",
				RedirectURL:     "",
				RedirectURLPath: "/oauth2/google/callback",
				AuthURL:         "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL:        "https://oauth2.googleapis.com/token",
				UserInfoURL:     "https://www.googleapis.com/oauth2/v3/userinfo",
				Scopes:          []string{"https://www.googleapis.com/auth/userinfo.profile", "https://www.googleapis.com/auth/userinfo.email"},
				PKCE:            true,
				ClientID:        "",
				ClientSecret:    "",
			},
		},
		SessionExchange: SessionExchange{
			Enabled:     false,
			Name:        "hosted",
			DisplayName: "Hosted Login",
			LoginURL:    "",
			VerifyURL:   "",
			Timeout:     Duration{Duration: 10 * time.Second},
			MarkerTTL:   Duration{Duration: 5 * time.Minute},
		},
		Smtp: Smtp{
			Enabled:     false,
			Host:        "smtp.gmail.com",
			Port:        587,
			FromName:    "Folio",
			FromAddress: "",
			LocalName:   "",
			AuthMethod:  "plain",
			UseTLS:      false,
			UseStartTLS: true,
			Username:    "",
			Password:    "",
		},
		Notifier: Notifier{
			Discord: Discord{
				Activated:    false,
				WebhookURL:   "",
				APIRateLimit: Duration{Duration: 2 * time.Second},
				APIBurst:     1,
				SendTimeout:  Duration{Duration: 10 * time.Second},
			},
		},
		BackupLocal: BackupLocal{
			Enabled:   false,
			BackupDir: "backups",
			Interval:  Duration{Duration: 24 * time.Hour},
			Keep:      7,
		},
		BlockIp: BlockIp{
			Enabled:   true,
			Activated: true,
		},
		Log: Log{
			Level: LogLevel{Level: slog.LevelInfo},
		},
	}
}
