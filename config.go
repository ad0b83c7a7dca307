package accounts

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// AppConfig is the environment-driven service configuration.
type AppConfig struct {
	Port            int    `env:"PORT" envDefault:"3000"`
	BaseURL         string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	SigningKey      string `env:"JWT_SECRET,required"`
	TokenExpiration int    `env:"TOKEN_EXPIRATION_HOURS" envDefault:"23"`
	Issuer          string `env:"TOKEN_ISSUER" envDefault:"go-accounts"`
	SenderAddress   string `env:"MAIL_SENDER,required"`
	SendGridKey     string `env:"SENDGRID_API_KEY,required"`
	DatabaseDSN     string `env:"DATABASE_DSN" envDefault:"file:accounts.db?cache=shared&_pragma=foreign_keys(1)"`
	PublicDir       string `env:"PUBLIC_DIR" envDefault:"public"`
	Debug           bool   `env:"DEBUG"`
}

var _ Config = (*AppConfig)(nil)

// LoadConfig reads the configuration from the process environment. Missing
// required keys fail here, before anything opens a connection.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "invalid service configuration")
	}
	return cfg, nil
}

func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *AppConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *AppConfig) GetIssuer() string {
	return c.Issuer
}

func (c *AppConfig) GetBaseURL() string {
	return c.BaseURL
}

func (c *AppConfig) GetSenderAddress() string {
	return c.SenderAddress
}

func (c *AppConfig) GetPort() int {
	return c.Port
}

func (c *AppConfig) GetDatabaseDSN() string {
	return c.DatabaseDSN
}

func (c *AppConfig) GetPublicDir() string {
	return c.PublicDir
}

func (c *AppConfig) GetSendGridKey() string {
	return c.SendGridKey
}
