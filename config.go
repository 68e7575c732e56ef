package figcms

import (
	"os"
	"strings"
	"time"
)

// Config holds all configuration for a figcms server.
type Config struct {
	SiteName        string // Site name for feeds (default "Fig.1")
	SiteURL         string // Canonical URL, no trailing slash (default "http://localhost:3000")
	SiteDescription string // Site description for the RSS channel

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/cms.db")
	UploadsDir   string // Media uploads directory (default "public/uploads")

	JWTSecret string // Required: session token signing key

	// SMTP settings. When SMTPAddr is empty, mail is logged and dropped.
	SMTPAddr     string // host:port
	SMTPUsername string
	SMTPPassword string
	FromEmail    string // sender address (default "noreply@fig1.com")
	FromName     string // sender display name (default SiteName)
	AdminEmail   string // contact form notifications go here

	PostCacheTTL time.Duration // Published-post cache TTL (default 5min)
}

func (c *Config) setDefaults() {
	if c.SiteName == "" {
		c.SiteName = "Fig.1"
	}
	if c.SiteURL == "" {
		c.SiteURL = "http://localhost:3000"
	}
	c.SiteURL = strings.TrimSuffix(c.SiteURL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/cms.db"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "public/uploads"
	}
	if c.FromEmail == "" {
		c.FromEmail = "noreply@fig1.com"
	}
	if c.FromName == "" {
		c.FromName = c.SiteName
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// ConfigFromEnv builds a Config from environment variables. Unset values
// fall back to the defaults applied by New.
func ConfigFromEnv() Config {
	return Config{
		SiteName:        os.Getenv("SITE_NAME"),
		SiteURL:         os.Getenv("SITE_URL"),
		SiteDescription: os.Getenv("SITE_DESCRIPTION"),
		Addr:            os.Getenv("ADDR"),
		DatabasePath:    os.Getenv("DATABASE_PATH"),
		UploadsDir:      os.Getenv("UPLOADS_DIR"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SMTPAddr:        os.Getenv("SMTP_ADDR"),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		FromEmail:       os.Getenv("FROM_EMAIL"),
		FromName:        os.Getenv("FROM_NAME"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithMailer overrides the mailer the App would otherwise construct from
// its SMTP config.
func WithMailer(m Mailer) Option {
	return func(a *App) {
		a.Mailer = m
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes, before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
