package authn

import (
	"time"
)

// Config carries the settings the module verifies and issues tokens with.
// It is registered in the container so other modules can resolve it.
type Config struct {
	// Secret signs and verifies HS256 tokens.
	Secret string `yaml:"secret" env:"AUTH_SECRET"`

	// IssueKey guards the token issue endpoint.
	IssueKey string `yaml:"issue_key" env:"AUTH_ISSUE_KEY"`

	Expiration time.Duration `yaml:"expiration" env:"AUTH_EXPIRATION" default:"24h"`
	Issuer     string        `yaml:"issuer" env:"AUTH_ISSUER" default:"provenhq-platform"`

	// Protected lists the path prefixes the verify middleware guards.
	Protected []string `yaml:"protected" env:"AUTH_PROTECTED" default:"/api"`
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return ErrSecretRequired
	}
	if c.IssueKey == "" {
		return ErrIssueKeyRequired
	}
	return nil
}
